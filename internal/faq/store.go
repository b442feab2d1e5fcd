package faq

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"support-intake-go/internal/jsonfile"
)

// FileName is the FAQ document inside the data directory.
const FileName = "faq.json"

// DefaultEntries seeds a fresh FAQ file.
var DefaultEntries = List{
	{Question: "How do I reset my password?", Answer: "You can reset your password by clicking on the 'Forgot Password' link on the login page."},
	{Question: "What are your business hours?", Answer: "Our customer service is available Monday to Friday, 9 AM to 6 PM."},
	{Question: "How can I track my order?", Answer: "You can track your order by logging into your account and visiting the 'Order History' section."},
}

// Store persists the FAQ as a single JSON object, rewritten on every Add.
type Store struct {
	path string
	mu   sync.Mutex
}

// Open returns a store for dataDir/faq.json. If the file does not exist it is
// created with seed (DefaultEntries when seed is nil).
func Open(dataDir string, seed List) (*Store, error) {
	s := &Store{path: filepath.Join(dataDir, FileName)}
	ok, err := jsonfile.Exists(s.path)
	if err != nil {
		return nil, fmt.Errorf("stat faq file: %w", err)
	}
	if !ok {
		if seed == nil {
			seed = DefaultEntries
		}
		if err := jsonfile.Write(s.path, seed); err != nil {
			return nil, fmt.Errorf("seed faq file: %w", err)
		}
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// List returns a fresh copy of all entries in insertion order.
func (s *Store) List() (List, error) {
	var l List
	if err := jsonfile.Read(s.path, &l); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return List{}, nil
		}
		return nil, fmt.Errorf("load faq: %w", err)
	}
	return l, nil
}

// Lookup loads the FAQ and runs Match against it.
func (s *Store) Lookup(query string) (string, bool, error) {
	l, err := s.List()
	if err != nil {
		return "", false, err
	}
	answer, ok := Match(query, l)
	return answer, ok, nil
}

// Add sets question to answer and rewrites the file.
func (s *Store) Add(question, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.List()
	if err != nil {
		return err
	}
	l = l.Set(question, answer)
	if err := jsonfile.Write(s.path, l); err != nil {
		return fmt.Errorf("save faq: %w", err)
	}
	return nil
}
