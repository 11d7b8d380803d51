package main

import (
	"testing"
)

func TestSetupLoggerNeverNil(t *testing.T) {
	t.Parallel()

	envs := []string{envLocal, envDev, envProd, "staging", ""}

	for _, env := range envs {
		env := env
		t.Run("env="+env, func(t *testing.T) {
			t.Parallel()

			if setupLogger(env) == nil {
				t.Fatalf("setupLogger(%q) returned nil", env)
			}
		})
	}
}
