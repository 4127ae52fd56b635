// Package dump writes debug copies of a sitting: the raw document and one CSV per table
package dump

import (
	"os"
	"path/filepath"
	"time"

	"hansard/internal/adapters/render"
	"hansard/internal/core/transcript"
	perr "hansard/internal/platform/errors"
)

// Dir writes dumps under one directory, named by sitting date
type Dir struct {
	Path     string
	SaveJSON bool // also keep the raw document
}

// New creates dir when missing
func New(dir string, saveJSON bool) (*Dir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "dump dir %s", dir)
	}
	return &Dir{Path: dir, SaveJSON: saveJSON}, nil
}

// Raw writes <date>.json when SaveJSON is set
func (d *Dir) Raw(day time.Time, raw []byte) error {
	if !d.SaveJSON {
		return nil
	}
	return writeFile(filepath.Join(d.Path, day.Format(transcript.DayLayout)+".json"), raw)
}

// Tables writes <date>_<table>.csv for every table
func (d *Dir) Tables(day time.Time, s *transcript.Sitting) error {
	for _, k := range render.Kinds {
		name := day.Format(transcript.DayLayout) + "_" + string(k) + ".csv"
		if err := writeFile(filepath.Join(d.Path, name), []byte(render.CSV(render.GridOf(s, k))+"\n")); err != nil {
			return err
		}
	}
	return nil
}

// writeFile replaces path through a .part file so readers never see half a dump
func writeFile(path string, b []byte) error {
	tmp := path + ".part"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		_ = os.Remove(tmp)
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "dump write %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "dump rename %s", path)
	}
	return nil
}
