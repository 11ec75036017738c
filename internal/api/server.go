package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"fungarium/internal/field"
	"fungarium/internal/reference"
	"fungarium/internal/registry"
	"fungarium/internal/specimen"

	"github.com/sirupsen/logrus"
)

// Seeds - откуда перечитывать стартовые поля и справочники.
type Seeds struct {
	FieldsDir string
	EnumsDir  string
}

// Server держит зависимости HTTP-слоя.
type Server struct {
	Fields    *registry.Registry
	Specimens *specimen.Service
	Seeds     Seeds
	log       *logrus.Entry

	mu    sync.RWMutex
	enums map[string]reference.EnumDirectory
}

func NewServer(fields *registry.Registry, specimens *specimen.Service, seeds Seeds, enums map[string]reference.EnumDirectory, log *logrus.Entry) *Server {
	if enums == nil {
		enums = map[string]reference.EnumDirectory{}
	}
	return &Server{Fields: fields, Specimens: specimens, Seeds: seeds, enums: enums, log: log}
}

func (s *Server) enum(name string) (reference.EnumDirectory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.enums[name]
	return d, ok
}

func (s *Server) setEnums(enums map[string]reference.EnumDirectory) {
	s.mu.Lock()
	s.enums = enums
	s.mu.Unlock()
}

// active - видимые определения в порядке реестра. Один снимок на запрос.
func (s *Server) active(ctx context.Context) ([]field.Definition, error) {
	defs, err := s.Fields.List(ctx)
	if err != nil {
		return nil, err
	}
	return registry.Active(defs), nil
}

// RunServer слушает addr до отмены ctx, затем корректно завершает запросы.
func RunServer(ctx context.Context, addr string, s *Server) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.log.WithError(err).Warn("http shutdown")
		}
	}()

	s.log.WithField("addr", addr).Info("http server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
