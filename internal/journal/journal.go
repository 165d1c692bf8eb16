package journal

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Формат времени, в котором журнал вёлся исторически.
const timeLayout = "15:04.05 02.01.2006"

// Journal ведёт человекочитаемый журнал входящих сообщений:
// одна строка на сообщение, с отметкой времени, в append-only файл.
// Структурные логи это не заменяет, журнал нужен как простая лента переписки.
type Journal struct {
	mu   sync.Mutex
	file *os.File
}

// Open opens (or creates) the journal file for appending.
func Open(path string) (*Journal, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal file: %w", err)
	}
	return &Journal{file: file}, nil
}

// Append writes one timestamped line. Safe for concurrent use.
func (j *Journal) Append(msg string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	line := fmt.Sprintf("[%s] %s\n", time.Now().Format(timeLayout), msg)
	if _, err := j.file.WriteString(line); err != nil {
		return fmt.Errorf("append journal line: %w", err)
	}
	return nil
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}
