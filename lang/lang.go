package lang

import (
	"log"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	mu       sync.RWMutex
	messages map[string]string
)

type file struct {
	ActiveLanguage string                       `yaml:"active_language"`
	Languages      map[string]map[string]string `yaml:",inline"`
}

func Load(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[lang] Could not read %s: %v — using empty translations", path, err)
		mu.Lock()
		messages = make(map[string]string)
		mu.Unlock()
		return
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		log.Fatalf("[lang] Failed to parse %s: %v", path, err)
	}

	active := f.ActiveLanguage
	if active == "" {
		active = "en"
	}

	block, ok := f.Languages[active]
	if !ok {
		log.Printf("[lang] Language %q not found in %s — falling back to \"en\"", active, path)
		block = f.Languages["en"]
	}
	if block == nil {
		block = make(map[string]string)
	}

	mu.Lock()
	messages = block
	mu.Unlock()

	log.Printf("[lang] Loaded language %q (%d keys)", active, len(block))
}

func T(key string, pairs ...string) string {
	mu.RLock()
	s, ok := messages[key]
	mu.RUnlock()

	if !ok {
		return "{" + key + "}"
	}

	for j := 0; j+1 < len(pairs); j += 2 {
		s = strings.ReplaceAll(s, "{"+pairs[j]+"}", pairs[j+1])
	}
	return s
}
