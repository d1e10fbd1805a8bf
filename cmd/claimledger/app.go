package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Takashi-Doyle/merkledrop-rns-contract/claims"
	"github.com/Takashi-Doyle/merkledrop-rns-contract/config"
	"github.com/Takashi-Doyle/merkledrop-rns-contract/ledgerstore"
	"github.com/Takashi-Doyle/merkledrop-rns-contract/seal"
	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/prometheus/client_golang/prometheus"
)

// app is the per invocation environment shared by the commands.
type app struct {
	cfg      config.Config
	log      logger.Logger
	store    ledgerstore.Store
	svc      *claims.Service
	registry *prometheus.Registry
	closers  []io.Closer
}

func openApp(cfg config.Config) (*app, error) {
	logger.New(cfg.LogLevel)
	a := &app{
		cfg:      cfg,
		log:      logger.Sugar.WithServiceName("claimledger"),
		registry: prometheus.NewRegistry(),
	}

	if err := a.openStore(); err != nil {
		return nil, err
	}

	notifiers := claims.Notifiers{claims.LogNotifier{Log: a.log}}
	if cfg.EventsFile != "" {
		f, err := os.OpenFile(cfg.EventsFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("open events file: %w", err)
		}
		a.closers = append(a.closers, f)
		stream, err := claims.NewCBORNotifier(f)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		notifiers = append(notifiers, stream)
	}

	opts := []claims.Option{
		claims.WithNotifier(notifiers),
		claims.WithMetrics(claims.NewMetrics(a.registry)),
	}
	if cfg.Seal.KeyFile != "" {
		signer, err := seal.LoadKeySigner(cfg.Seal.KeyFile, cfg.Seal.KeyID)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		codec, err := seal.NewCheckpointCodec()
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		opts = append(opts, claims.WithSealer(seal.NewSealer(cfg.Seal.Issuer, codec), signer))
	}

	a.svc = claims.NewService(a.log, a.store, claims.LogTransferer{Log: a.log}, opts...)
	return a, nil
}

func (a *app) openStore() error {
	switch a.cfg.Store.Backend {
	case config.BackendAzblobDev:
		storer, err := azblob.NewDev(azblob.NewDevConfigFromEnv(), a.cfg.Store.Container)
		if err != nil {
			return fmt.Errorf("connect to blob store emulator: %w", err)
		}
		a.store = ledgerstore.NewBlobStore(storer, a.log)
		return nil
	default:
		store, err := ledgerstore.OpenBadgerStore(ledgerstore.BadgerConfig{
			Path:       a.cfg.Store.Path,
			InMemory:   a.cfg.Store.InMemory,
			SyncWrites: a.cfg.Store.SyncWrites,
		}, a.log)
		if err != nil {
			return err
		}
		a.store = store
		a.closers = append(a.closers, store)
		return nil
	}
}

// Close writes the metrics file, if configured, and releases the store.
func (a *app) Close() error {
	var errs []error
	if a.cfg.Metrics.File != "" {
		if err := prometheus.WriteToTextfile(a.cfg.Metrics.File, a.registry); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
