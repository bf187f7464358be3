// Package linelist reads spectroscopic line catalogs laid out as <root>/<database>/<molecule>.cat.
//
// Each catalog row holds the frequency in MHz, the log10 line strength, the lower-level
// excitation energy in cm-1 and a free-text quantum-number label.
package linelist

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/linetiles/linetiles/gas"
)

// Database names, also the catalog subdirectories.
const (
	CDMS  = "cdms"
	JPL   = "jpl"
	LAMDA = "lamda"
)

// DefaultCacheSize is the number of parsed catalog files kept in memory.
const DefaultCacheSize = 64

// Entry is one catalog row.
type Entry struct {
	Frequency  float64 // Hz
	Strength   float64 // log10 intensity
	Excitation float64 // cm-1
	Label      string
}

// Wavelength returns the entry position in micron.
func (e Entry) Wavelength() float64 { return gas.SpeedOfLight / e.Frequency * 1e4 }

// Provider answers line-list queries from catalog files.
type Provider struct {
	root  string
	cache *lru.Cache[string, []Entry]
}

var _ gas.LineListProvider = (*Provider)(nil)

// New returns a Provider rooted at root keeping up to size parsed files.
func New(root string, size int) (*Provider, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, []Entry](size)
	if err != nil {
		return nil, fmt.Errorf("line list cache: %w", err)
	}
	return &Provider{root: root, cache: c}, nil
}

// Lines implements gas.LineListProvider. A database without a catalog for the molecule is
// skipped.
func (p *Provider) Lines(ctx context.Context, q gas.LineListQuery) ([]gas.Transition, error) {
	var out []gas.Transition
	for _, db := range databases(q) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, err := p.entries(db, q.Molecule)
		if errors.Is(err, fs.ErrNotExist) {
			logrus.Debugf("no %s catalog for %s", db, q.Molecule)
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !accept(e, q) {
				continue
			}
			out = append(out, gas.Transition{
				Molecule:  q.Molecule,
				Label:     e.Label,
				Frequency: e.Frequency,
				Telescope: strings.ToUpper(db),
			})
		}
	}
	return out, nil
}

// Len reports the number of cached catalog files.
func (p *Provider) Len() int { return p.cache.Len() }

func databases(q gas.LineListQuery) []string {
	var dbs []string
	if q.CDMS {
		dbs = append(dbs, CDMS)
	}
	if q.JPL {
		dbs = append(dbs, JPL)
	}
	if q.LAMDA {
		dbs = append(dbs, LAMDA)
	}
	return dbs
}

func accept(e Entry, q gas.LineListQuery) bool {
	if e.Frequency <= 0 {
		return false
	}
	if w := e.Wavelength(); w < q.Min || w > q.Max {
		return false
	}
	if q.MinStrength != nil && e.Strength < *q.MinStrength {
		return false
	}
	if q.MaxExcitation != nil && e.Excitation > *q.MaxExcitation {
		return false
	}
	return true
}

func (p *Provider) entries(db, molecule string) ([]Entry, error) {
	path := filepath.Join(p.root, db, molecule+".cat")
	if es, ok := p.cache.Get(path); ok {
		return es, nil
	}
	es, err := ReadCatalog(path)
	if err != nil {
		return nil, err
	}
	p.cache.Add(path, es)
	return es, nil
}

// ReadCatalog parses one catalog file.
func ReadCatalog(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open line catalog: %w", err)
	}
	defer f.Close()
	var es []Entry
	sc := bufio.NewScanner(f)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, fmt.Errorf("%s line %d: expected frequency, strength, excitation and label", filepath.Base(path), n)
		}
		var vals [3]float64
		for i := range vals {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", filepath.Base(path), n, err)
			}
			vals[i] = v
		}
		es = append(es, Entry{
			Frequency:  vals[0] * 1e6,
			Strength:   vals[1],
			Excitation: vals[2],
			Label:      strings.Join(fields[3:], " "),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read line catalog: %w", err)
	}
	return es, nil
}
