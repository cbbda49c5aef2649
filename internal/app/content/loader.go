// Package content serves per-theme game data: phrases and wheel segments.
//
// Data lives under data/<theme>/ and is embedded in the binary. A directory
// on disk can shadow the embedded files. Missing files fall back to the
// default theme.
package content

import (
	"bufio"
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/dkeye/EducaGame/internal/core"
	"github.com/dkeye/EducaGame/internal/domain"
)

const (
	DefaultTheme = "default"

	phrasesFile = "phrases.json"
	wheelFile   = "wheel.json"
	themesFile  = "themes.txt"
)

// Used when no theme, default included, has phrases.
var fallbackPhrases = []string{"Brasil", "Educacao", "Matematica"}

//go:embed data
var embedded embed.FS

type phraseEntry struct {
	Phrase string `json:"phrase"`
}

type Loader struct {
	sources []fs.FS
	group   singleflight.Group

	mu      sync.RWMutex
	phrases map[string][]string
	wheels  map[string][]domain.Segment
}

// New builds a loader. dataDir may be empty.
func New(dataDir string) *Loader {
	var sources []fs.FS
	if dataDir != "" {
		if st, err := os.Stat(dataDir); err == nil && st.IsDir() {
			sources = append(sources, os.DirFS(dataDir))
		} else {
			log.Warn().Str("module", "content").Str("data_dir", dataDir).Msg("data dir not usable, using embedded data only")
		}
	}
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return NewFromFS(append(sources, sub)...)
}

// NewFromFS reads from the given filesystems in order; the first hit wins.
func NewFromFS(sources ...fs.FS) *Loader {
	return &Loader{
		sources: sources,
		phrases: make(map[string][]string),
		wheels:  make(map[string][]domain.Segment),
	}
}

var _ core.ContentProvider = (*Loader)(nil)

// Themes lists the themes named in themes.txt, or just the default one.
func (l *Loader) Themes() []string {
	var themes []string
	seen := map[string]bool{}
	for _, src := range l.sources {
		data, err := fs.ReadFile(src, themesFile)
		if err != nil {
			continue
		}
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			t := strings.TrimSpace(sc.Text())
			if t == "" || strings.HasPrefix(t, "#") || seen[t] {
				continue
			}
			seen[t] = true
			themes = append(themes, t)
		}
	}
	if len(themes) == 0 {
		themes = []string{DefaultTheme}
	}
	return themes
}

// Phrases and WheelSegments cache by the theme that actually holds the file,
// so unknown theme names all share the default entry.
func (l *Loader) Phrases(theme string) []string {
	theme = l.resolve(theme, phrasesFile)
	l.mu.RLock()
	cached, ok := l.phrases[theme]
	l.mu.RUnlock()
	if ok {
		return cached
	}
	v, _, _ := l.group.Do("phrases/"+theme, func() (any, error) {
		var entries []phraseEntry
		l.loadJSON(theme, phrasesFile, &entries)
		out := make([]string, 0, len(entries))
		for _, e := range entries {
			if p := strings.TrimSpace(e.Phrase); p != "" {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			out = fallbackPhrases
		}
		l.mu.Lock()
		l.phrases[theme] = out
		l.mu.Unlock()
		return out, nil
	})
	return v.([]string)
}

func (l *Loader) WheelSegments(theme string) []domain.Segment {
	theme = l.resolve(theme, wheelFile)
	l.mu.RLock()
	cached, ok := l.wheels[theme]
	l.mu.RUnlock()
	if ok {
		return cached
	}
	v, _, _ := l.group.Do("wheel/"+theme, func() (any, error) {
		var segs []domain.Segment
		l.loadJSON(theme, wheelFile, &segs)
		for i := range segs {
			if segs[i].Type == "" {
				segs[i].Type = domain.SegmentNormal
			}
		}
		l.mu.Lock()
		l.wheels[theme] = segs
		l.mu.Unlock()
		return segs, nil
	})
	return v.([]domain.Segment)
}

// resolve returns theme when one of the sources has <theme>/<file>, else the
// default theme.
func (l *Loader) resolve(theme, file string) string {
	if !validTheme(theme) {
		return DefaultTheme
	}
	for _, src := range l.sources {
		if _, err := fs.Stat(src, theme+"/"+file); err == nil {
			return theme
		}
	}
	return DefaultTheme
}

// loadJSON decodes <theme>/<file>, falling back to the default theme.
func (l *Loader) loadJSON(theme, file string, v any) bool {
	if validTheme(theme) {
		if err := l.decode(theme+"/"+file, v); err == nil {
			return true
		}
	}
	if theme != DefaultTheme {
		if err := l.decode(DefaultTheme+"/"+file, v); err == nil {
			log.Debug().Str("module", "content").Str("theme", theme).Str("file", file).Msg("fallback to default theme")
			return true
		}
	}
	return false
}

func (l *Loader) decode(path string, v any) error {
	for _, src := range l.sources {
		data, err := fs.ReadFile(src, path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, v); err != nil {
			log.Warn().Err(err).Str("module", "content").Str("path", path).Msg("bad content file")
			return err
		}
		return nil
	}
	return fs.ErrNotExist
}

func validTheme(theme string) bool {
	return theme != "" && !strings.ContainsAny(theme, `/\`) && fs.ValidPath(theme)
}
