package storage

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"sync"
)

// FilePubStore хранит список изданий в памяти с необязательной
// фиксацией в JSON-файле. Потокобезопасен.
type FilePubStore struct {
	mu   sync.RWMutex
	pubs []string
	file string
}

// NewFilePubStore создаёт хранилище. При пустом пути к файлу
// список живёт только в памяти.
func NewFilePubStore(file string) *FilePubStore {
	store := &FilePubStore{file: file}

	if err := store.loadFromFile(); err != nil {
		log.Printf("Ошибка загрузки изданий из файла: %v", err)
	}

	return store
}

// GetPubs возвращает копию текущего списка изданий.
func (s *FilePubStore) GetPubs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.pubs))
	copy(out, s.pubs)
	return out, nil
}

// SetPubs заменяет список изданий и сохраняет его в файл, если тот задан.
func (s *FilePubStore) SetPubs(_ context.Context, pubs []string) error {
	clean := Clean(pubs)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pubs = clean
	if s.file == "" {
		return nil
	}
	return s.writeToFile(clean)
}

// loadFromFile загружает список изданий при старте сервера.
func (s *FilePubStore) loadFromFile() error {
	if s.file == "" {
		return nil
	}
	data, err := os.ReadFile(s.file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Файл ещё не создан, это не ошибка
		}
		return err
	}

	var pubs []string
	if err := json.Unmarshal(data, &pubs); err != nil {
		return err
	}
	s.pubs = pubs

	log.Printf("Загружено %d изданий из файла %s", len(pubs), s.file)
	return nil
}

// writeToFile записывает список целиком (замена, не дозапись).
func (s *FilePubStore) writeToFile(pubs []string) error {
	data, err := json.Marshal(pubs)
	if err != nil {
		return err
	}
	return os.WriteFile(s.file, data, 0644)
}
