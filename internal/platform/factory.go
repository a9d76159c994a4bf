package platform

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/lifecycle"

	eventsource "github.com/aretw0/tagnote/pkg/adapters/lifecycle"
	"github.com/aretw0/tagnote/pkg/audio"
	"github.com/aretw0/tagnote/pkg/codec"
	"github.com/aretw0/tagnote/pkg/core"
	"github.com/aretw0/tagnote/pkg/settings"
)

// App bundles the services a UI talks to, all sharing one storage.
type App struct {
	Notes    *core.Service
	Settings *settings.Service
	Audio    *audio.Player
	Storage  core.Storage
}

// New opens the storage, loads the note collection and wires the services.
//
//	app, err := tagnote.New("./vault", tagnote.WithAdapter("bolt"))
func New(uri string, opts ...Option) (*App, error) {
	o := parse(opts)

	caps := o.capabilities
	if name, ok := o.config["variant"].(string); ok {
		c, known := core.VariantByName(name)
		if !known {
			return nil, fmt.Errorf("unknown variant: %s", name)
		}
		caps = c
	}

	c, err := codec.ByName(o.format)
	if err != nil {
		return nil, err
	}

	storage, err := initStorage(uri, o)
	if err != nil {
		return nil, err
	}

	svcOpts := []core.ServiceOption{
		core.WithServiceLogger(o.logger),
		core.WithCodec(c),
		core.WithCapabilities(caps),
	}
	if size, ok := o.config["event_buffer"].(int); ok {
		svcOpts = append(svcOpts, core.WithEventBufferSize(size))
	}
	notes := core.NewService(storage, svcOpts...)
	notes.Load(context.Background())

	backend := o.audio
	if backend == nil {
		backend = audio.NewSilentBackend()
	}

	return &App{
		Notes:    notes,
		Settings: settings.New(storage, c, o.logger),
		Audio:    audio.NewPlayer(backend, caps, o.logger),
		Storage:  storage,
	}, nil
}

// Close stops playback and releases the storage if it holds resources.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Audio.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if c, ok := a.Storage.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Source watches the vault and reports each reload, with the resulting
// note and tag counts, as a lifecycle.Source. The caller starts it; its
// events stop when ctx is done.
func (a *App) Source(ctx context.Context) (lifecycle.Source, error) {
	events, err := a.Notes.Watch(ctx)
	if err != nil {
		return nil, err
	}
	return eventsource.NewSource(events, a.Notes), nil
}
