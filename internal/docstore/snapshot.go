package docstore

import "github.com/Annany2002/nebula-docstore/internal/domain"

// Snapshot is the complete in-memory state of every collection. It is
// persisted and replaced as one unit.
type Snapshot struct {
	Users     []domain.User     `json:"users"`
	UserRoles []domain.UserRole `json:"userRoles"`
	Databases []domain.Database `json:"databases"`
	Tables    []domain.Table    `json:"databaseTables"`
	Columns   []domain.Column   `json:"tableColumns"`
	Rows      []domain.Row      `json:"tableRows"`
	APIKeys   []domain.APIKey   `json:"apiKeys"`
	QueryLogs []domain.QueryLog `json:"queryLogs"`
}

// NewSnapshot returns a snapshot with every collection present and empty.
func NewSnapshot() *Snapshot {
	s := &Snapshot{}
	s.normalize()
	return s
}

// normalize replaces nil collections so encoded snapshots always carry
// every key and callers never range over a nil slice by accident.
func (s *Snapshot) normalize() {
	if s.Users == nil {
		s.Users = []domain.User{}
	}
	if s.UserRoles == nil {
		s.UserRoles = []domain.UserRole{}
	}
	if s.Databases == nil {
		s.Databases = []domain.Database{}
	}
	if s.Tables == nil {
		s.Tables = []domain.Table{}
	}
	if s.Columns == nil {
		s.Columns = []domain.Column{}
	}
	if s.Rows == nil {
		s.Rows = []domain.Row{}
	}
	if s.APIKeys == nil {
		s.APIKeys = []domain.APIKey{}
	}
	if s.QueryLogs == nil {
		s.QueryLogs = []domain.QueryLog{}
	}
}
