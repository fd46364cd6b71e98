package tracedump

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agenthands/pyint/pkg/compiler/lexer"
)

// TokenEntry is one row of the tokens table.
type TokenEntry struct {
	ID        int64  `gorm:"primaryKey"`
	RunID     string `gorm:"index:idx_run_seq,priority:1"`
	Seq       int    `gorm:"index:idx_run_seq,priority:2"`
	Line      int
	Column    int
	Category  string
	Lexeme    string
	CreatedAt int64
}

func (TokenEntry) TableName() string {
	return "tokens"
}

// SQLiteSink appends token rows to a SQLite database. Every Write uses a
// fresh run id so several dumps can share one file.
type SQLiteSink struct {
	db    *gorm.DB
	runID string
}

// OpenSQLite opens or creates the database at path and migrates the tokens
// table.
func OpenSQLite(path string) (*SQLiteSink, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("tracedump: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&TokenEntry{}); err != nil {
		return nil, fmt.Errorf("tracedump: migrate %s: %w", path, err)
	}
	return &SQLiteSink{db: db}, nil
}

// RunID returns the id used by the last Write.
func (s *SQLiteSink) RunID() string {
	return s.runID
}

func (s *SQLiteSink) Write(tokens []lexer.Token) error {
	s.runID = uuid.NewString()
	if len(tokens) == 0 {
		return nil
	}

	now := time.Now().Unix()
	rows := make([]TokenEntry, len(tokens))
	for i, tok := range tokens {
		rows[i] = TokenEntry{
			RunID:     s.runID,
			Seq:       i,
			Line:      tok.Line,
			Column:    tok.Column,
			Category:  tok.Kind.String(),
			Lexeme:    tok.Lexeme,
			CreatedAt: now,
		}
	}
	if err := s.db.CreateInBatches(rows, 200).Error; err != nil {
		return fmt.Errorf("tracedump: insert tokens: %w", err)
	}
	return nil
}

// Entries returns the rows written under runID in sequence order.
func (s *SQLiteSink) Entries(runID string) ([]TokenEntry, error) {
	var rows []TokenEntry
	if err := s.db.Where("run_id = ?", runID).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("tracedump: query run %s: %w", runID, err)
	}
	return rows, nil
}

func (s *SQLiteSink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
