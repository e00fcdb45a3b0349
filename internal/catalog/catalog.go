package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/robottwo/chatline/pkg/richtext"
)

// File is the on-disk layout of the user catalog:
//
//	users:
//	  - id: "42"
//	    name: ada
//	    email: ada@example.com
type File struct {
	Users []richtext.User `yaml:"users"`
}

// Parse decodes a catalog. Entries without an id or name, and repeated ids,
// are dropped; every dropped entry is reported in the returned error while
// the valid users are still returned.
func Parse(data []byte) ([]richtext.User, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode user catalog: %w", err)
	}

	var result *multierror.Error
	seen := make(map[string]bool, len(file.Users))
	users := make([]richtext.User, 0, len(file.Users))

	for i, u := range file.Users {
		u.ID = strings.TrimSpace(u.ID)
		u.Name = strings.TrimSpace(u.Name)
		u.Email = strings.TrimSpace(u.Email)

		switch {
		case u.ID == "":
			result = multierror.Append(result, fmt.Errorf("user %d: missing id", i+1))
			continue
		case u.Name == "":
			result = multierror.Append(result, fmt.Errorf("user %d (%s): missing name", i+1, u.ID))
			continue
		case seen[u.ID]:
			result = multierror.Append(result, fmt.Errorf("user %d: duplicate id %s", i+1, u.ID))
			continue
		}

		seen[u.ID] = true
		users = append(users, u)
	}

	return users, result.ErrorOrNil()
}

// Load reads the catalog at path. A missing file is an empty catalog.
func Load(path string) ([]richtext.User, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user catalog %s: %w", path, err)
	}

	users, err := Parse(data)
	if err != nil {
		return users, fmt.Errorf("%s: %w", path, err)
	}
	return users, nil
}
