package resource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"testing"
	"testing/fstest"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sliverarmory/loadctx/module"
)

type staticSource []module.Module

func (s staticSource) Snapshot() []module.Module {
	return append([]module.Module(nil), s...)
}

// payloadModule is a loaded module that remembers which payload it came from.
type payloadModule struct {
	name    string
	payload string
}

func (m *payloadModule) Name() string { return m.name }

func (m *payloadModule) Resource(key string) ([]byte, error) {
	return nil, fmt.Errorf("%s: %w", key, fs.ErrNotExist)
}

type recordingLoader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (l *recordingLoader) Load(_ context.Context, name string, payload []byte) (module.Module, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return &payloadModule{name: name, payload: string(payload)}, nil
}

type brokenModule struct{ name string }

func (m brokenModule) Name() string { return m.name }

func (m brokenModule) Resource(string) ([]byte, error) {
	return nil, errors.New("resource table corrupted")
}

func TestKey(t *testing.T) {
	if got := Key("Game", "Physics", "wasm"); got != "Game.Physics.wasm" {
		t.Fatalf("Key() = %q", got)
	}
}

func TestResolveReturnsNothingWithoutMatch(t *testing.T) {
	source := staticSource{
		module.NewFS("Game", fstest.MapFS{"Game.Other.wasm": {Data: []byte("x")}}),
		module.NewFS("Tools", fstest.MapFS{}),
	}
	loader := &recordingLoader{}
	r := New(source, loader)

	m, err := r.Resolve(context.Background(), "Physics")
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("Resolve error = %v, want ErrUnresolved", err)
	}
	if m != nil {
		t.Fatalf("expected no module, got %v", m)
	}
	if loader.calls != 0 {
		t.Fatalf("loader called %d times", loader.calls)
	}
}

func TestResolveKeyUsesHostName(t *testing.T) {
	// The payload is stored under another module's prefix, so it must not
	// match when probing Game.
	source := staticSource{
		module.NewFS("Game", fstest.MapFS{"Tools.Physics.wasm": {Data: []byte("x")}}),
	}
	r := New(source, &recordingLoader{})

	if _, err := r.Resolve(context.Background(), "Physics"); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("Resolve error = %v, want ErrUnresolved", err)
	}
}

func TestResolveFirstMatchWins(t *testing.T) {
	source := staticSource{
		module.NewFS("Launcher", fstest.MapFS{}),
		module.NewFS("Game", fstest.MapFS{"Game.Physics.wasm": {Data: []byte("from-game")}}),
		module.NewFS("Tools", fstest.MapFS{"Tools.Physics.wasm": {Data: []byte("from-tools")}}),
	}
	core, logs := observer.New(zapcore.DebugLevel)
	r := New(source, &recordingLoader{}, WithLogger(zap.New(core)))

	m, err := r.Resolve(context.Background(), "Physics")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	got := m.(*payloadModule)
	if got.name != "Physics" || got.payload != "from-game" {
		t.Fatalf("unexpected module: %+v", got)
	}

	resolved := logs.FilterMessage("resolved module from embedded resource").All()
	if len(resolved) != 1 {
		t.Fatalf("expected one resolution log, got %d", len(resolved))
	}
	if host := resolved[0].ContextMap()["module"]; host != "Game" {
		t.Fatalf("logged host module = %v, want Game", host)
	}
}

func TestResolveSkipsSystemAndEmptyPayloads(t *testing.T) {
	source := staticSource{
		module.NewFS("System.Runtime", fstest.MapFS{"System.Runtime.Physics.wasm": {Data: []byte("system")}}),
		module.NewFS("Game", fstest.MapFS{"Game.Physics.wasm": {Data: []byte{}}}),
		brokenModule{name: "Broken"},
		module.NewFS("Tools", fstest.MapFS{"Tools.Physics.wasm": {Data: []byte("from-tools")}}),
	}
	r := New(source, &recordingLoader{}, WithLogger(zap.NewNop()))

	m, err := r.Resolve(context.Background(), "Physics")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := m.(*payloadModule).payload; got != "from-tools" {
		t.Fatalf("unexpected payload: got=%q want=%q", got, "from-tools")
	}
}

func TestResolveWithSuffix(t *testing.T) {
	source := staticSource{
		module.NewFS("X", fstest.MapFS{"X.foo.dll": {Data: []byte("dll")}}),
	}
	r := New(source, &recordingLoader{}, WithSuffix(".dll"))
	if r.Suffix() != "dll" {
		t.Fatalf("Suffix() = %q, want dll", r.Suffix())
	}

	m, err := r.Resolve(context.Background(), "foo")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := m.(*payloadModule).payload; got != "dll" {
		t.Fatalf("unexpected payload %q", got)
	}
}

func TestResolveLoaderFailure(t *testing.T) {
	loadErr := errors.New("invalid magic number")
	source := staticSource{
		module.NewFS("Game", fstest.MapFS{"Game.Physics.wasm": {Data: []byte("bad")}}),
		module.NewFS("Tools", fstest.MapFS{"Tools.Physics.wasm": {Data: []byte("good")}}),
	}
	loader := &recordingLoader{err: loadErr}
	r := New(source, loader)

	_, err := r.Resolve(context.Background(), "Physics")
	if !errors.Is(err, loadErr) {
		t.Fatalf("Resolve error = %v, want %v", err, loadErr)
	}
	if errors.Is(err, ErrUnresolved) {
		t.Fatal("a load failure is not an unresolved reference")
	}
	if loader.calls != 1 {
		t.Fatalf("loader called %d times, want 1", loader.calls)
	}
}

func TestResolveRejectsEmptyName(t *testing.T) {
	r := New(staticSource{}, &recordingLoader{})
	if _, err := r.Resolve(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestResolveIsRepeatable(t *testing.T) {
	source := staticSource{
		module.NewFS("A", fstest.MapFS{"A.foo.wasm": {Data: []byte("a")}}),
		module.NewFS("B", fstest.MapFS{"B.foo.wasm": {Data: []byte("b")}}),
	}
	loader := &recordingLoader{}
	r := New(source, loader)

	for i := 0; i < 5; i++ {
		m, err := r.Resolve(context.Background(), "foo")
		if err != nil {
			t.Fatalf("Resolve #%d: %v", i, err)
		}
		if got := m.(*payloadModule).payload; got != "a" {
			t.Fatalf("Resolve #%d picked %q, want a", i, got)
		}
	}
	if loader.calls != 5 {
		t.Fatalf("loader called %d times, want 5", loader.calls)
	}
}
