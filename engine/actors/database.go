package actors

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"agewitness/engine/library"
	"github.com/dgraph-io/badger/v4"
	"github.com/sasha-s/go-deadlock"
	"github.com/shirou/gopsutil/disk"
	"github.com/sirupsen/logrus"
)

// AppendOnlyStore is the persisted half of a mind. Keys are primary hashes, values are whatever
// the mind serialises. Append never overwrites an existing key and nothing is ever removed.
type AppendOnlyStore interface {
	Append(key, value []byte) error
	ReadAll(each func(key, value []byte) error) error
	Close() error
}

var ErrNotEnoughSpace = errors.New("not enough space available on disk")

// OpenStore opens the configured backend for a mind. An unreadable store is wiped and recreated
// empty, the network will repopulate it.
func OpenStore(s Settings, mind string) (AppendOnlyStore, error) {
	dir := directory(s.RootDir+s.FlatFileDir, mind)
	switch s.StoreBackend {
	case "badger":
		return OpenBadgerStore(dir, s.MinimumFreeSpaceMB)
	case "memory":
		return NewMemoryStore(), nil
	case "", "flatfile":
		return OpenFlatFileStore(dir)
	}
	return nil, fmt.Errorf("unknown storeBackend %q", s.StoreBackend)
}

func directory(dataDir, mind string) string {
	return filepath.Join(dataDir, mind) + "/"
}

func Open(dir, db string) (*os.File, bool) {
	if err := os.MkdirAll(dir, 0777); err != nil {
		library.LogCLI(err.Error(), 1)
	}
	_, err := os.Stat(dir + db + ".dat")
	if os.IsNotExist(err) {
		return nil, false
	}
	file, err := os.Open(dir + db + ".dat")
	if err != nil {
		library.LogCLI(err.Error(), 1)
		return nil, false //IDE helper
	}
	return file, true
}

func Write(dir, db string, b []byte) error {
	if err := os.MkdirAll(dir, 0777); err != nil {
		return err
	}
	// write next to the live file and rename so a crash never leaves half a snapshot
	f, err := os.Create(dir + db + ".tmp")
	if err != nil {
		return err
	}
	_, err = io.Copy(f, bytes.NewReader(b))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return os.Rename(dir+db+".tmp", dir+db+".dat")
}

// flatFileStore keeps the whole store as one JSON object of hex key -> value.
type flatFileStore struct {
	dir   string
	data  map[string]json.RawMessage
	mutex *deadlock.Mutex
}

func OpenFlatFileStore(dir string) (AppendOnlyStore, error) {
	s := &flatFileStore{
		dir:   dir,
		data:  make(map[string]json.RawMessage),
		mutex: &deadlock.Mutex{},
	}
	if f, ok := Open(dir, "current"); ok {
		s.restoreFromDisk(f)
	}
	return s, nil
}

func (s *flatFileStore) restoreFromDisk(f *os.File) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	err := json.NewDecoder(f).Decode(&s.data)
	f.Close()
	if s.data == nil {
		s.data = make(map[string]json.RawMessage)
	}
	if err != nil && err != io.EOF {
		library.LogCLI(fmt.Sprintf("store %s is unreadable, starting empty: %s", s.dir, err), 2)
		s.data = make(map[string]json.RawMessage)
		if err := os.Remove(s.dir + "current.dat"); err != nil {
			library.LogCLI(err.Error(), 2)
		}
	}
}

func (s *flatFileStore) Append(key, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	k := hex.EncodeToString(key)
	if _, exists := s.data[k]; exists {
		return nil
	}
	if !json.Valid(value) {
		return fmt.Errorf("value for %s is not JSON", k)
	}
	s.data[k] = append(json.RawMessage{}, value...)
	return s.persistToDisk()
}

// persistToDisk persists the current state to disk
func (s *flatFileStore) persistToDisk() error {
	b, err := json.Marshal(s.data)
	if err != nil {
		return err
	}
	return Write(s.dir, "current", b)
}

func (s *flatFileStore) ReadAll(each func(key, value []byte) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for k, v := range s.data {
		key, err := hex.DecodeString(k)
		if err != nil {
			library.LogCLI(fmt.Sprintf("skipping malformed key %q in %s", k, s.dir), 2)
			continue
		}
		if err := each(key, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *flatFileStore) Close() error {
	return nil
}

type badgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or recreates) a badger database in dir.
func OpenBadgerStore(dir string, minimumFreeSpaceMB uint64) (AppendOnlyStore, error) {
	if err := os.MkdirAll(dir, 0777); err != nil {
		return nil, err
	}
	if err := checkFreeSpace(dir, minimumFreeSpaceMB); err != nil {
		return nil, err
	}
	db, err := badger.Open(badgerOptions(dir))
	if err != nil {
		library.LogCLI(fmt.Sprintf("store %s is unreadable, starting empty: %s", dir, err), 2)
		if err := os.RemoveAll(dir); err != nil {
			return nil, err
		}
		db, err = badger.Open(badgerOptions(dir))
		if err != nil {
			return nil, fmt.Errorf("error recreating store %s: %w", dir, err)
		}
	}
	return &badgerStore{db: db}, nil
}

func badgerOptions(dir string) badger.Options {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	opts := badger.DefaultOptions(dir)
	opts.Logger = log
	opts.ValueLogFileSize = 1024 * 1024 * 16
	opts.SyncWrites = true
	return opts
}

func checkFreeSpace(dir string, minimumFreeSpaceMB uint64) error {
	usage, err := disk.Usage(dir)
	if err != nil {
		return fmt.Errorf("error retrieving disk usage for %s: %w", dir, err)
	}
	if usage.Free/(1024*1024) < minimumFreeSpaceMB {
		return fmt.Errorf("%w: %s has %d MB free", ErrNotEnoughSpace, dir, usage.Free/(1024*1024))
	}
	return nil
}

func (s *badgerStore) Append(key, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, value)
	})
}

func (s *badgerStore) ReadAll(each func(key, value []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := each(item.KeyCopy(nil), value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *badgerStore) Close() error {
	return s.db.Close()
}

type memoryStore struct {
	keys  []string
	data  map[string][]byte
	mutex *deadlock.Mutex
}

// NewMemoryStore is an AppendOnlyStore that forgets everything on exit.
func NewMemoryStore() AppendOnlyStore {
	return &memoryStore{
		data:  make(map[string][]byte),
		mutex: &deadlock.Mutex{},
	}
}

func (s *memoryStore) Append(key, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.data[string(key)]; exists {
		return nil
	}
	s.keys = append(s.keys, string(key))
	s.data[string(key)] = append([]byte{}, value...)
	return nil
}

func (s *memoryStore) ReadAll(each func(key, value []byte) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, k := range s.keys {
		if err := each([]byte(k), s.data[k]); err != nil {
			return err
		}
	}
	return nil
}

func (s *memoryStore) Close() error {
	return nil
}
