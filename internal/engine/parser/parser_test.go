package parser

import (
	"context"
	"cratedeps/internal/core/errors"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_ParsesValidRust(t *testing.T) {
	p := NewParser()

	tree, err := p.Parse(context.Background(), []byte("use serde::Serialize;\nfn main() {}\n"))
	require.NoError(t, err)
	defer tree.Close()

	root := tree.Root()
	assert.Equal(t, "source_file", root.Kind())
	assert.Equal(t, uint(2), root.NamedChildCount())
	assert.Equal(t, "use serde::Serialize;", tree.Text(root.NamedChild(0)))
	assert.Equal(t, 0, p.ActiveParsers())
}

func TestParser_RejectsMalformedRust(t *testing.T) {
	p := NewParser()

	_, err := p.Parse(context.Background(), []byte("fn main() {\n    let x = ;\n}\n"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeParse))

	var perr *ParseError
	require.True(t, stderrors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
	assert.Greater(t, perr.Column, 0)
}

func TestParser_RejectsUnclosedBlock(t *testing.T) {
	p := NewParser()

	_, err := p.Parse(context.Background(), []byte("mod a {\n    fn f() {}\n"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeParse))
}

func TestParser_HonorsCancelledContext(t *testing.T) {
	p := NewParser()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Parse(ctx, []byte("fn main() {}"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParser_ConcurrentUse(t *testing.T) {
	p := NewParser()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := p.Parse(context.Background(), []byte("extern crate log;\nfn f() { log::info!(\"x\"); }\n"))
			if err != nil {
				errs <- err
				return
			}
			tree.Close()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("unexpected parse error: %v", err)
	}
}

func TestIsRustSource(t *testing.T) {
	assert.True(t, IsRustSource("src/lib.rs"))
	assert.True(t, IsRustSource("BUILD/MAIN.RS"))
	assert.False(t, IsRustSource("Cargo.toml"))
	assert.False(t, IsRustSource("main.go"))
}
