// Package server previews the artifacts of a run over HTTP: a JSON index
// at the root and the files themselves under /artifacts/.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/dimfeld/httptreemux"
	"github.com/rs/zerolog/log"
)

const (
	DefaultAddress = ":8080"

	ArtifactsPath = "/artifacts"
)

// Artifact describes one file of the output directory.
type Artifact struct {
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Modified    time.Time `json:"modified"`
}

// Index is the JSON document served at the root.
type Index struct {
	Dir       string     `json:"dir"`
	Artifacts []Artifact `json:"artifacts"`
}

// NewRouter serves the artifacts found in dir.
func NewRouter(dir string) http.Handler {
	r := httptreemux.New()
	r.GET("/", func(w http.ResponseWriter, req *http.Request, _ map[string]string) {
		idx, err := ReadIndex(dir)
		if err != nil {
			log.Error().Err(err).Str("dir", dir).Msg("reading artifacts")
			http.Error(w, "could not list artifacts", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(idx); err != nil {
			log.Error().Err(err).Msg("writing index")
		}
	})
	r.GET(ArtifactsPath+"/*path", func(w http.ResponseWriter, req *http.Request, params map[string]string) {
		name := params["path"]
		if !fs.ValidPath(name) {
			http.NotFound(w, req)
			return
		}
		p := filepath.Join(dir, filepath.FromSlash(name))
		fi, err := os.Stat(p)
		if err != nil || fi.IsDir() {
			http.NotFound(w, req)
			return
		}
		http.ServeFile(w, req, p)
	})
	return r
}

// ReadIndex walks dir and lists every regular file, sorted by name.
func ReadIndex(dir string) (*Index, error) {
	idx := &Index{Dir: dir, Artifacts: []Artifact{}}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		ct := mime.TypeByExtension(path.Ext(name))
		if ct == "" {
			ct = "application/octet-stream"
		}
		idx.Artifacts = append(idx.Artifacts, Artifact{
			Name:        name,
			URL:         ArtifactsPath + "/" + name,
			Size:        fi.Size(),
			ContentType: ct,
			Modified:    fi.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(idx.Artifacts, func(i, j int) bool { return idx.Artifacts[i].Name < idx.Artifacts[j].Name })
	return idx, nil
}

// ListenAndServe serves dir on addr until ctx is done.
func ListenAndServe(ctx context.Context, addr, dir string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(dir),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("dir", dir).Msg("serving artifacts")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
