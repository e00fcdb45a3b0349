package history

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type HistoryManager struct {
	db *gorm.DB
}

// MessageEntry is one sent message, stored with its wire tokens
// (<@id|name>, :name:, <url>) intact.
type MessageEntry struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	Text string
}

func NewHistoryManager(dbFilePath string) (*HistoryManager, error) {
	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.AutoMigrate(&MessageEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return &HistoryManager{
		db: db,
	}, nil
}

// Close closes the database connection.
func (historyManager *HistoryManager) Close() error {
	sqlDB, err := historyManager.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (historyManager *HistoryManager) RecordMessage(text string) (*MessageEntry, error) {
	entry := MessageEntry{
		Text: text,
	}

	result := historyManager.db.Create(&entry)
	if result.Error != nil {
		return nil, result.Error
	}

	return &entry, nil
}

// GetRecentEntries returns up to limit entries, newest first.
func (historyManager *HistoryManager) GetRecentEntries(limit int) ([]MessageEntry, error) {
	var entries []MessageEntry
	result := historyManager.db.Order("created_at desc").Order("id desc").Limit(limit).Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}
	return entries, nil
}

// GetRecentMessages returns the text of up to limit messages, newest first,
// in the order the input line walks them with the up key.
func (historyManager *HistoryManager) GetRecentMessages(limit int) ([]string, error) {
	entries, err := historyManager.GetRecentEntries(limit)
	if err != nil {
		return nil, err
	}
	return lo.Map(entries, func(e MessageEntry, _ int) string {
		return e.Text
	}), nil
}

// SearchEntries returns messages containing query, newest first. Searching
// for "<@42|" finds every message that mentions user 42.
func (historyManager *HistoryManager) SearchEntries(query string, limit int) ([]MessageEntry, error) {
	var entries []MessageEntry
	result := historyManager.db.Where("instr(text, ?) > 0", query).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}
	return entries, nil
}

func (historyManager *HistoryManager) DeleteEntry(id uint) error {
	result := historyManager.db.Delete(&MessageEntry{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no history entry found with id %d", id)
	}

	return nil
}

func (historyManager *HistoryManager) ResetHistory() error {
	result := historyManager.db.Exec("DELETE FROM message_entries")
	if result.Error != nil {
		return result.Error
	}

	return nil
}
