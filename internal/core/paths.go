package core

import (
	"os"
	"path/filepath"
)

type Paths struct {
	HomeDir     string
	DataDir     string
	ConfigDir   string
	LogFile     string
	HistoryFile string
	UsersFile   string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		dataDir := filepath.Join(homeDir, ".local", "share", "chatline")
		configDir := filepath.Join(homeDir, ".config", "chatline")

		defaultPaths = &Paths{
			HomeDir:     homeDir,
			DataDir:     dataDir,
			ConfigDir:   configDir,
			LogFile:     filepath.Join(dataDir, "chatline.log"),
			HistoryFile: filepath.Join(dataDir, "history.db"),
			UsersFile:   filepath.Join(configDir, "users.yaml"),
		}

		err = os.MkdirAll(defaultPaths.DataDir, 0755)
		if err != nil {
			panic(err)
		}
	}
}

func HomeDir() string {
	ensureDefaultPaths()
	return defaultPaths.HomeDir
}

func DataDir() string {
	ensureDefaultPaths()
	return defaultPaths.DataDir
}

func ConfigDir() string {
	ensureDefaultPaths()
	return defaultPaths.ConfigDir
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

func HistoryFile() string {
	ensureDefaultPaths()
	return defaultPaths.HistoryFile
}

func UsersFile() string {
	ensureDefaultPaths()
	return defaultPaths.UsersFile
}
