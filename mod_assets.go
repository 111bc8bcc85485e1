package gekko

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gekko3d/gekko-pbr/render/core"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

type AssetId string

type TextureState int

const (
	TexturePending TextureState = iota
	TextureReady
	TextureFailed
)

func (s TextureState) String() string {
	switch s {
	case TexturePending:
		return "pending"
	case TextureReady:
		return "ready"
	case TextureFailed:
		return "failed"
	}
	return fmt.Sprintf("TextureState(%d)", int(s))
}

type ColorSpace int

const (
	ColorSpaceSRGB ColorSpace = iota
	ColorSpaceLinear
)

var ErrCubeFaceCount = errors.New("cube texture needs exactly six faces")

// TextureHandle refers to a texture issued by an AssetServer. It is valid
// immediately; the pixels arrive later.
type TextureHandle struct {
	Id AssetId
}

func (h TextureHandle) IsZero() bool {
	return h.Id == ""
}

type textureOptions struct {
	colorSpace ColorSpace
	flipY      bool
}

type TextureOption func(*textureOptions)

// Linear marks a data texture (normal, roughness, ...) that must not be sRGB decoded.
func Linear() TextureOption {
	return func(o *textureOptions) { o.colorSpace = ColorSpaceLinear }
}

func FlipY(flip bool) TextureOption {
	return func(o *textureOptions) { o.flipY = flip }
}

type textureAsset struct {
	paths     []string
	cube      bool
	opts      textureOptions
	state     TextureState
	err       error
	requested uint32
	data      *core.TextureData
}

type geometryAsset struct {
	geometry *Geometry
	data     *core.GeometryData
}

type decodeResult struct {
	id        AssetId
	requested uint32
	width     int
	height    int
	pixels    []byte
	err       error
}

type AssetServer struct {
	root   string
	logger Logger

	textures   map[AssetId]*textureAsset
	geometries map[AssetId]*geometryAsset
	materials  map[AssetId]any

	ctx      context.Context
	cancel   context.CancelFunc
	sem      *semaphore.Weighted
	inflight sync.WaitGroup

	mu        sync.Mutex
	completed []decodeResult

	watcher *textureWatcher
}

func NewAssetServer(root string, workers int, logger Logger) *AssetServer {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &AssetServer{
		root:       root,
		logger:     logger,
		textures:   make(map[AssetId]*textureAsset),
		geometries: make(map[AssetId]*geometryAsset),
		materials:  make(map[AssetId]any),
		ctx:        ctx,
		cancel:     cancel,
		sem:        semaphore.NewWeighted(int64(workers)),
	}
}

func (server *AssetServer) resolve(path string) string {
	if filepath.IsAbs(path) || server.root == "" {
		return path
	}
	return filepath.Join(server.root, path)
}

// LoadTexture starts decoding a 2D image in the background and returns at once.
// Images are flipped vertically unless FlipY(false) is given.
func (server *AssetServer) LoadTexture(path string, opts ...TextureOption) TextureHandle {
	o := textureOptions{colorSpace: ColorSpaceSRGB, flipY: true}
	for _, opt := range opts {
		opt(&o)
	}
	return server.addTexture([]string{server.resolve(path)}, false, o)
}

// LoadCubeTexture loads six faces in +X, -X, +Y, -Y, +Z, -Z order into one cube texture.
func (server *AssetServer) LoadCubeTexture(paths []string, opts ...TextureOption) (TextureHandle, error) {
	if len(paths) != 6 {
		return TextureHandle{}, fmt.Errorf("%w: got %d", ErrCubeFaceCount, len(paths))
	}
	o := textureOptions{colorSpace: ColorSpaceSRGB}
	for _, opt := range opts {
		opt(&o)
	}
	resolved := make([]string, len(paths))
	for i, p := range paths {
		resolved[i] = server.resolve(p)
	}
	return server.addTexture(resolved, true, o), nil
}

func (server *AssetServer) addTexture(paths []string, cube bool, opts textureOptions) TextureHandle {
	id := makeAssetId()
	asset := &textureAsset{
		paths: paths,
		cube:  cube,
		opts:  opts,
		state: TexturePending,
	}
	server.textures[id] = asset
	server.queueDecode(id, asset)
	if server.watcher != nil {
		server.watcher.watch(id, paths)
	}
	return TextureHandle{Id: id}
}

func (server *AssetServer) queueDecode(id AssetId, asset *textureAsset) {
	asset.requested++
	requested := asset.requested
	paths, cube, flip := asset.paths, asset.cube, asset.opts.flipY

	server.inflight.Add(1)
	go func() {
		defer server.inflight.Done()

		res := decodeResult{id: id, requested: requested}
		if err := server.sem.Acquire(server.ctx, 1); err != nil {
			res.err = err
		} else {
			if cube {
				res.width, res.height, res.pixels, res.err = decodeCubeFaces(paths)
			} else {
				res.width, res.height, res.pixels, res.err = decodeTextureFile(paths[0], flip)
			}
			server.sem.Release(1)
		}

		server.mu.Lock()
		server.completed = append(server.completed, res)
		server.mu.Unlock()
	}()
}

// Poll applies finished decodes. Runs on the frame loop, so texture state is
// only ever mutated from one goroutine.
func (server *AssetServer) Poll() {
	server.mu.Lock()
	done := server.completed
	server.completed = nil
	server.mu.Unlock()

	for _, res := range done {
		asset, ok := server.textures[res.id]
		if !ok || res.requested != asset.requested {
			continue
		}
		if res.err != nil {
			asset.state = TextureFailed
			asset.err = res.err
			server.logger.Warnf("Texture %s failed to load: %v", asset.paths[0], res.err)
			continue
		}

		version := uint32(1)
		if asset.data != nil {
			version = asset.data.Version + 1
		}
		asset.state = TextureReady
		asset.err = nil
		asset.data = &core.TextureData{
			ID:      string(res.id),
			Version: version,
			Width:   res.width,
			Height:  res.height,
			Pixels:  res.pixels,
			SRGB:    asset.opts.colorSpace == ColorSpaceSRGB,
			Cube:    asset.cube,
		}
		server.logger.Debugf("Texture %s ready (%dx%d)", asset.paths[0], res.width, res.height)
	}

	if server.watcher != nil {
		for _, id := range server.watcher.drain() {
			if asset, ok := server.textures[id]; ok {
				server.logger.Infof("Reloading texture %s", asset.paths[0])
				server.queueDecode(id, asset)
			}
		}
	}
}

// Wait blocks until every queued decode finished and applies the results.
func (server *AssetServer) Wait() {
	server.inflight.Wait()
	server.Poll()
}

// Close cancels queued decodes and stops watching files.
func (server *AssetServer) Close() {
	server.cancel()
	server.inflight.Wait()
	if server.watcher != nil {
		server.watcher.close()
		server.watcher = nil
	}
}

func (server *AssetServer) TextureState(h TextureHandle) TextureState {
	asset, ok := server.textures[h.Id]
	if !ok {
		return TextureFailed
	}
	return asset.state
}

// TextureErr reports why a texture failed, nil otherwise.
func (server *AssetServer) TextureErr(h TextureHandle) error {
	asset, ok := server.textures[h.Id]
	if !ok {
		return fmt.Errorf("%w %s", ErrUnknownTexture, h.Id)
	}
	return asset.err
}

// ResolveTexture returns the uploaded pixels of a ready texture. Pending and failed
// textures resolve to nil, which renderers draw as an unbound slot.
func (server *AssetServer) ResolveTexture(h TextureHandle) *core.TextureData {
	if h.IsZero() {
		return nil
	}
	asset, ok := server.textures[h.Id]
	if !ok || asset.state != TextureReady {
		return nil
	}
	return asset.data
}

func (server *AssetServer) AddGeometry(g *Geometry) AssetId {
	id := makeAssetId()
	server.geometries[id] = &geometryAsset{
		geometry: g,
		data: &core.GeometryData{
			ID:       string(id),
			Version:  1,
			Vertices: g.Interleave(),
			Indices:  g.Indices,
		},
	}
	return id
}

func (server *AssetServer) Geometry(id AssetId) (*Geometry, bool) {
	asset, ok := server.geometries[id]
	if !ok {
		return nil, false
	}
	return asset.geometry, true
}

func (server *AssetServer) geometryData(id AssetId) *core.GeometryData {
	if asset, ok := server.geometries[id]; ok {
		return asset.data
	}
	return nil
}

// AddMaterial registers a *StandardMaterial or *MatcapMaterial after validating its bindings.
func (server *AssetServer) AddMaterial(material any) (AssetId, error) {
	switch m := material.(type) {
	case *StandardMaterial:
		if err := m.Validate(server); err != nil {
			return "", err
		}
	case *MatcapMaterial:
		if err := m.Validate(server); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unsupported material type %T", material)
	}
	id := makeAssetId()
	server.materials[id] = material
	return id, nil
}

func (server *AssetServer) StandardMaterial(id AssetId) (*StandardMaterial, bool) {
	m, ok := server.materials[id].(*StandardMaterial)
	return m, ok
}

func (server *AssetServer) MatcapMaterial(id AssetId) (*MatcapMaterial, bool) {
	m, ok := server.materials[id].(*MatcapMaterial)
	return m, ok
}

type AssetServerModule struct {
	Root    string
	Workers int
	Watch   bool
}

func (mod AssetServerModule) Install(app *App, cmd *Commands) {
	server := NewAssetServer(mod.Root, mod.Workers, app.Logger())
	if mod.Watch {
		w, err := newTextureWatcher(app.Logger())
		if err != nil {
			app.Logger().Warnf("Texture hot reload disabled: %v", err)
		} else {
			server.watcher = w
		}
	}
	app.addResources(server)
	app.OnShutdown(server.Close)
	app.UseSystem(
		System(assetsSystem).
			InStage(PreUpdate),
	)
}

func assetsSystem(server *AssetServer) {
	server.Poll()
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
