// Package storage keeps recorded runs on disk, one directory per run holding
// metadata.json and frames.csv.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/multierr"

	"github.com/san-kum/meshsim/internal/meshgen"
	"github.com/san-kum/meshsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	meshFile     = "mesh.yaml"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string             `json:"id"`
	Mesh      string             `json:"mesh"`
	Preset    string             `json:"preset,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Vertices  int                `json:"vertices"`
	Springs   int                `json:"springs"`
	Dt        float32            `json:"dt"`
	Frames    int                `json:"frames"`
	Steps     int                `json:"steps"`
	Release   string             `json:"release"`
	Stiffness float32            `json:"stiffness"`
	Damping   float32            `json:"damping"`
	Metrics   map[string]float64 `json:"metrics"`
	Error     string             `json:"error,omitempty"`
}

// Save writes a new run directory and returns its id. meta.ID, Timestamp
// and Metrics are filled in from the store and result.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	meta.Timestamp = s.now()
	runDir, runID, err := s.newRunDir(meta.Mesh, meta.Timestamp)
	if err != nil {
		return "", err
	}
	meta.ID = runID
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics

	err = createFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
	if err != nil {
		return "", err
	}

	err = createFile(filepath.Join(runDir, framesFile), func(w io.Writer) error {
		return WriteFrames(w, result.Frames)
	})
	if err != nil {
		return "", err
	}
	return runID, nil
}

func createFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return writeAndClose(f, write)
}

// writeAndClose reports a failed close too, since buffered data may only
// reach the disk there.
func writeAndClose(wc io.WriteCloser, write func(io.Writer) error) error {
	err := write(wc)
	return multierr.Append(err, wc.Close())
}

// newRunDir creates <mesh>_<timestamp>, adding a suffix when two runs land
// in the same second.
func (s *Store) newRunDir(mesh string, ts time.Time) (string, string, error) {
	if mesh == "" {
		mesh = "mesh"
	}
	base := fmt.Sprintf("%s_%s", mesh, ts.Format("20060102-150405"))
	runID := base
	for i := 2; ; i++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runDir, runID, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, i)
	}
}

// List returns the metadata of every run, newest first. Directories without
// readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()
	return ReadFrames(file)
}

// SaveMesh stores the rest mesh of a run next to its frames, so exports can
// recover the spring topology later.
func (s *Store) SaveMesh(runID string, src meshgen.Source) error {
	runDir := filepath.Join(s.baseDir, runID)
	if _, err := os.Stat(runDir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return err
	}
	return meshgen.Save(filepath.Join(runDir, meshFile), src)
}

func (s *Store) LoadMesh(runID string) (meshgen.Source, error) {
	src, err := meshgen.LoadFile(filepath.Join(s.baseDir, runID, meshFile))
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return meshgen.Source{}, fmt.Errorf("%w: %s has no mesh", ErrRunNotFound, runID)
	}
	return src, err
}
