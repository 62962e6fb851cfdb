package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/keywordping/keywordping-go/internal/store"
	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

func loadSettings(cmd *cobra.Command) (keywordping.Settings, error) {
	st, err := openStore()
	if err != nil {
		return keywordping.Settings{}, err
	}
	defer st.Close()
	return st.Load(cmd.Context())
}

// updateSettings loads, edits and saves the settings in one step.
func updateSettings(cmd *cobra.Command, edit func(keywordping.Settings) keywordping.Settings) (keywordping.Settings, error) {
	st, err := openStore()
	if err != nil {
		return keywordping.Settings{}, err
	}
	defer st.Close()
	return store.Update(cmd.Context(), st, edit)
}

// followSettings applies the current settings to engine and keeps applying
// changes in the background until ctx ends.
func followSettings(ctx context.Context, st store.Store, engine *keywordping.Engine) error {
	updates, errs, err := st.Watch(ctx)
	if err != nil {
		return err
	}

	select {
	case s, ok := <-updates:
		if !ok {
			return errors.New("settings watch ended before the first snapshot")
		}
		engine.Apply(s)
	case err, ok := <-errs:
		if !ok {
			return errors.New("settings watch ended before the first snapshot")
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}

	go func() {
		for err := range errs {
			logger.Warn("settings reload failed", "error", err)
		}
	}()
	go func() {
		if err := engine.Run(ctx, updates); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("settings updates stopped", "error", err)
		}
	}()
	return nil
}
