package mixer

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// TrimStore persists servo centers learned by autotrim
type TrimStore interface {
	SaveServoCenters(centers []int16) error
}

type NopTrimStore struct{}

func (NopTrimStore) SaveServoCenters(centers []int16) error {
	return nil
}

type servoCenters struct {
	Middles []int16 `toml:"middles"`
}

// FileTrimStore writes the centers to a TOML file, replacing it atomically
type FileTrimStore struct {
	Path string
}

func NewFileTrimStore(path string) *FileTrimStore {
	return &FileTrimStore{Path: path}
}

func (s *FileTrimStore) SaveServoCenters(centers []int16) error {
	temporary := s.Path + ".tmp"
	file, err := os.Create(temporary)
	if err != nil {
		return errors.Wrapf(err, "creating %s", temporary)
	}
	encodeErr := toml.NewEncoder(file).Encode(servoCenters{Middles: centers})
	closeErr := file.Close()
	if encodeErr != nil {
		return errors.Wrap(encodeErr, "encoding servo centers")
	}
	if closeErr != nil {
		return errors.Wrapf(closeErr, "closing %s", temporary)
	}
	if err := os.Rename(temporary, s.Path); err != nil {
		return errors.Wrapf(err, "replacing %s", s.Path)
	}
	Logger.Infof("Saved servo centers %v to %s", centers, s.Path)
	return nil
}

// LoadServoCenters reads centers written by SaveServoCenters
func (s *FileTrimStore) LoadServoCenters() ([]int16, error) {
	var centers servoCenters
	if _, err := toml.DecodeFile(s.Path, &centers); err != nil {
		return nil, errors.Wrapf(err, "loading servo centers from %s", s.Path)
	}
	return centers.Middles, nil
}

// ApplyServoCenters overwrites the configured servo middles with learned ones
func (c *Configuration) ApplyServoCenters(centers []int16) {
	for i, middle := range centers {
		if i >= len(c.Servos) {
			break
		}
		c.Servos[i].Middle = middle
	}
}
