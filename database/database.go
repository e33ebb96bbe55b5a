package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Swagman-cyber/hell/logging"
)

// Bucket names
var (
	guildsBucket = []byte("guilds")
	codesBucket  = []byte("used_codes")
	metaBucket   = []byte("meta")
)

// ledgerSchema - Current shape of the used_codes bucket. Bumped whenever the
// key layout or record shape changes; a mismatch on open wipes the ledger.
const ledgerSchema = "2"

var ledgerSchemaKey = []byte("ledger_schema")

// ErrCodeConflict - Returned by MarkUsed when the code is already in the ledger
var ErrCodeConflict = errors.New("code already used")

// ErrRecordNotFound - Returned when a requested record does not exist
var ErrRecordNotFound = errors.New("record not found")

// Store - Bolt db connection holding guild settings and the used-code ledger
type Store struct {
	db *bolt.DB
}

// Open - Open the db file and make sure the schema is usable
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close - Close the db connection
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates the buckets and reinitializes the ledger if its recorded
// schema does not match what this build expects. Reinit loses history and is
// logged loudly.
func (s *Store) initSchema() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(guildsBucket); err != nil {
			return err
		}
		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return err
		}

		codes := tx.Bucket(codesBucket)
		recorded := meta.Get(ledgerSchemaKey)
		if codes != nil && (recorded == nil || string(recorded) != ledgerSchema) {
			logging.Warn("used-code ledger schema is %q, want %q - dropping and recreating the ledger", recorded, ledgerSchema)
			if err := tx.DeleteBucket(codesBucket); err != nil {
				return err
			}
			codes = nil
		}
		if codes == nil {
			if _, err := tx.CreateBucket(codesBucket); err != nil {
				return err
			}
		}
		return meta.Put(ledgerSchemaKey, []byte(ledgerSchema))
	})
}

// GetGuildSettings - Get settings struct for a guild
func (s *Store) GetGuildSettings(gid string) (gs GuildSettings, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(guildsBucket).Get([]byte(gid))
		if v == nil {
			return ErrRecordNotFound
		}
		return json.Unmarshal(v, &gs)
	})
	if errors.Is(err, ErrRecordNotFound) {
		// Insert new doc, verification enabled by default
		gs = GuildSettings{ID: gid, Enabled: true}
		return gs, s.UpdateGuildSettings(gs)
	}
	return gs, err
}

// UpdateGuildSettings - Update guild settings in db
func (s *Store) UpdateGuildSettings(gs GuildSettings) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bts, err := json.Marshal(gs)
		if err != nil {
			return err
		}
		return tx.Bucket(guildsBucket).Put([]byte(gs.ID), bts)
	})
}

// IsUsed - Check if a (code, account) pair is already in the ledger
func (s *Store) IsUsed(code string, robloxID int64) (used bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		used = tx.Bucket(codesBucket).Get(codeKey(code, robloxID)) != nil
		return nil
	})
	return used, err
}

// MarkUsed - Record a (code, account) pair as consumed. The presence check and
// the insert share one write transaction, so two racing confirms get exactly
// one winner and the loser sees ErrCodeConflict.
func (s *Store) MarkUsed(code string, robloxID int64, verifier string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(codesBucket)
		key := codeKey(code, robloxID)
		if b.Get(key) != nil {
			return ErrCodeConflict
		}
		bts, err := json.Marshal(UsedCode{Verifier: verifier, UsedAt: time.Now()})
		if err != nil {
			return err
		}
		return b.Put(key, bts)
	})
}

// Unburn - Delete one used-code record. Operator recovery for the case where
// the ledger committed but every role grant failed.
func (s *Store) Unburn(code string, robloxID int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(codesBucket)
		key := codeKey(code, robloxID)
		if b.Get(key) == nil {
			return ErrRecordNotFound
		}
		return b.Delete(key)
	})
}

func codeKey(code string, robloxID int64) []byte {
	return []byte(fmt.Sprintf("%s|%d", code, robloxID))
}
