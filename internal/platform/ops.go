package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/tagnote/pkg/adapters/bolt"
	"github.com/aretw0/tagnote/pkg/adapters/fs"
	"github.com/aretw0/tagnote/pkg/adapters/memory"
	"github.com/aretw0/tagnote/pkg/codec"
	"github.com/aretw0/tagnote/pkg/core"
)

// Init prepares the storage selected by the options.
// The uri argument is adapter-specific: a vault directory for "fs",
// a directory or database file for "bolt", ignored for "memory".
func Init(uri string, opts ...Option) (core.Storage, error) {
	return initStorage(uri, parse(opts))
}

func initStorage(uri string, o *options) (core.Storage, error) {
	if o.storage != nil {
		return o.storage, nil
	}

	c, err := codec.ByName(o.format)
	if err != nil {
		return nil, err
	}

	var storage core.Storage
	switch o.adapter {
	case AdapterFS:
		storage = initFS(uri, c, o)
	case AdapterBolt:
		storage = initBolt(uri, o)
	case AdapterMemory:
		storage = memory.New()
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}

	if err := storage.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return storage, nil
}

// resolvePath applies the dev sandbox rules and logs which mode is active.
func resolvePath(path string, o *options) (string, bool) {
	tempDir, _ := o.config["temp_dir"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	bypassSafety := isReadOnly || !devSafety
	useTemp := tempDir || (IsDevRun() && !bypassSafety)
	resolved := ResolveVaultPath(path, useTemp)

	if IsDevRun() && o.logger != nil {
		switch {
		case isReadOnly:
			o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolved)
		case bypassSafety:
			o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolved)
		default:
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", resolved)
		}
	}
	return resolved, useTemp
}

// initFS builds the filesystem adapter.
func initFS(path string, c core.Codec, o *options) *fs.Storage {
	autoInit, _ := o.config["auto_init"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)
	systemDir, _ := o.config["system_dir"].(string)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))
	if systemDir == "" {
		systemDir = fs.DefaultSystemDir
	}

	resolvedPath, useTemp := resolvePath(path, o)

	// Versioning defaults to whatever the vault already is.
	gitless, explicit := o.config["gitless"].(bool)
	if !explicit {
		_, err := os.Stat(filepath.Join(resolvedPath, ".git"))
		gitless = err != nil
		if gitless && o.logger != nil {
			o.logger.Debug("auto-detected gitless mode", "reason", ".git missing")
		}
	}

	return fs.NewStorage(fs.Config{
		Path:         resolvedPath,
		AutoInit:     autoInit,
		Gitless:      gitless,
		MustExist:    mustExist || (!autoInit && !useTemp),
		ReadOnly:     isReadOnly,
		Logger:       o.logger,
		SystemDir:    systemDir,
		Ext:          codec.Ext(c),
		ErrorHandler: errorHandler,
	})
}

// initBolt builds the bbolt adapter. A directory uri holds the default database file.
func initBolt(uri string, o *options) *bolt.Storage {
	isReadOnly, _ := o.config["read_only"].(bool)
	resolved, _ := resolvePath(uri, o)

	path := resolved
	if filepath.Ext(path) == "" {
		path = filepath.Join(path, bolt.DefaultFile)
	}

	return bolt.NewStorage(bolt.Config{
		Path:     path,
		ReadOnly: isReadOnly,
		Logger:   o.logger,
	})
}

// Sync synchronizes the vault at uri with its remote.
func Sync(uri string, opts ...Option) error {
	o := parse(opts)
	if o.storage == nil {
		o.config["must_exist"] = true
	}

	storage, err := initStorage(uri, o)
	if err != nil {
		return err
	}

	syncable, ok := storage.(core.Syncable)
	if !ok {
		return fmt.Errorf("%s storage does not support synchronization: %w", o.adapter, core.ErrUnsupported)
	}
	return syncable.Sync(context.Background())
}
