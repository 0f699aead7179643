package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/keshon/datastore"
)

const commandHistoryLimit = 20

// Storage keeps the bounded per-guild command audit trail. Playback state is
// deliberately not stored here; sessions, queues and votes live and die with
// the process.
type Storage struct {
	ds *datastore.DataStore
}

type CommandRecord struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Command  string    `json:"command"`
	Datetime time.Time `json:"datetime"`
}

type guildRecord struct {
	CommandHistory []CommandRecord `json:"cmd_history"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// RecordCommand appends a command-use record, trimming history to the limit.
func (s *Storage) RecordCommand(guildID, userID, username, command string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandHistory = append(record.CommandHistory, CommandRecord{
		UserID:   userID,
		Username: username,
		Command:  command,
		Datetime: time.Now(),
	})
	if len(record.CommandHistory) > commandHistoryLimit {
		record.CommandHistory = record.CommandHistory[len(record.CommandHistory)-commandHistoryLimit:]
	}

	s.ds.Add(guildID, record)
	return nil
}

// CommandHistory returns the recorded command uses for a guild, oldest first.
func (s *Storage) CommandHistory(guildID string) ([]CommandRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandHistory, nil
}

func (s *Storage) getOrCreateGuildRecord(guildID string) (*guildRecord, error) {
	data, exists := s.ds.Get(guildID)
	if !exists {
		record := &guildRecord{CommandHistory: []CommandRecord{}}
		s.ds.Add(guildID, record)
		return record, nil
	}

	// The datastore hands back whatever it deserialized; round-trip through
	// JSON to get the typed record.
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	var record guildRecord
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, fmt.Errorf("error unmarshalling guild record: %w", err)
	}
	return &record, nil
}
