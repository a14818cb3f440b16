package wiring_test

import (
	"context"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/require"
	"go.trai.ch/quill/internal/app"
	"go.trai.ch/quill/internal/core/ports"
	_ "go.trai.ch/quill/internal/wiring"
)

// TestGraftDependencies checks that every node declaring a dependency uses it
// and every used dependency is declared.
func TestGraftDependencies(t *testing.T) {
	// AssertDepsValid infers the dependency ID from the package of the type
	// passed to Dep[T]. Several nodes produce types from the shared ports
	// package, so it reports them all as a single "ports" dependency.
	t.Skip("graft static analysis cannot tell apart nodes that share the ports package")
	graft.AssertDepsValid(t, "../../internal")
}

func TestGraphResolves(t *testing.T) {
	t.Chdir(t.TempDir())

	components, _, err := graft.ExecuteFor[*app.Components](context.Background())
	require.NoError(t, err)
	require.NotNil(t, components.App)

	tracer, _, err := graft.ExecuteFor[ports.Tracer](context.Background())
	require.NoError(t, err)
	require.NotNil(t, tracer)

	require.NoError(t, components.App.Close(context.Background()))
}
