package avltree

import "fmt"

// Key is the set of supported key types.
type Key interface {
	float64 | int32 | uint32
}

// KeyType tags the key type of a configuration.
type KeyType uint8

// Supported key types.
const (
	KeyFloat64 KeyType = iota + 1
	KeyInt32
	KeyUint32
)

func (kt KeyType) String() string {
	switch kt {
	case KeyFloat64:
		return "float64"
	case KeyInt32:
		return "int32"
	case KeyUint32:
		return "uint32"
	}
	return fmt.Sprintf("KeyType(%d)", uint8(kt))
}

func keyTypeOf[K Key]() KeyType {
	var k K
	switch any(k).(type) {
	case float64:
		return KeyFloat64
	case int32:
		return KeyInt32
	case uint32:
		return KeyUint32
	}
	panic("avltree: unsupported key type")
}

// Balancing selects the balancing strategy of trees.
type Balancing uint8

const (
	// NoBalancing leaves the tree shape to the order of insertions.
	NoBalancing Balancing = iota
	// AVL keeps every node's subtrees within a height difference of one.
	AVL
)

// ChildView is a read-only view on a child of a node, handed to node updaters
// and seek guides. For leaf children, Leaf holds the leaf's payload; for node
// children, Node holds the node's payload. Key is the leaf key or the routing
// key of the node, respectively.
type ChildView[K Key, L, N any] struct {
	IsLeaf bool
	Key    K
	Leaf   L
	Node   N
}

// NodeUpdater re-computes the payload of a node from its two children.
// It is called bottom-up whenever something changes below a node. Returning
// false signals that the payload did not change, which stops propagation
// towards the root.
type NodeUpdater[K Key, L, N any] func(payload *N, key K, children [2]ChildView[K, L, N]) (changed bool)

// Config is a set of callbacks and structural settings, shared by all trees
// created with it.
//
// K is the key type, L the type of leaf payloads and N the type of node
// payloads. Clients not using node payloads may use struct{} for N.
//
// A configuration is reference-counted. NewConfig returns a handle owned by
// the caller; trees retain the configuration for their lifetime. Once a tree
// has performed its first structural operation, the configuration is frozen
// and must not be changed any more.
type Config[K Key, L, N any] struct {
	keyType   KeyType
	balancing Balancing
	routing   KeyRouting[K]

	leafConstruct func(key K, payload L) L
	leafDestruct  func(key K, payload L)
	nodeConstruct func(key K) N
	nodeDestruct  func(key K, payload N)
	nodeUpdate    NodeUpdater[K, L, N]
	observer      func(Event[K])

	refs   int
	frozen bool
	trees  int // live trees, instrumented builds only
}

// NewConfig creates a configuration for keys of type K, using the default
// ordered routing.
func NewConfig[K Key, L, N any](balancing Balancing) *Config[K, L, N] {
	assert(balancing == NoBalancing || balancing == AVL, "NewConfig: invalid balancing mode")
	return &Config[K, L, N]{
		keyType:   keyTypeOf[K](),
		balancing: balancing,
		routing:   OrderedRouting[K]{},
		refs:      1,
	}
}

// KeyType returns the tag of the configuration's key type.
func (cfg *Config[K, L, N]) KeyType() KeyType {
	return cfg.keyType
}

// Balancing returns the balancing mode of the configuration.
func (cfg *Config[K, L, N]) Balancing() Balancing {
	return cfg.balancing
}

// Routing returns the key routing of the configuration.
func (cfg *Config[K, L, N]) Routing() KeyRouting[K] {
	return cfg.routing
}

// SetNodeCallbacks sets the constructor, destructor and updater for node
// payloads. Any of them may be nil.
func (cfg *Config[K, L, N]) SetNodeCallbacks(construct func(key K) N, destruct func(key K, payload N),
	update NodeUpdater[K, L, N]) {
	cfg.checkMutable("SetNodeCallbacks")
	cfg.nodeConstruct = construct
	cfg.nodeDestruct = destruct
	cfg.nodeUpdate = update
}

// SetLeafCallbacks sets the constructor and destructor for leaf payloads.
// The constructor receives the payload handed to an insert and returns the
// payload to store. Either may be nil.
func (cfg *Config[K, L, N]) SetLeafCallbacks(construct func(key K, payload L) L, destruct func(key K, payload L)) {
	cfg.checkMutable("SetLeafCallbacks")
	cfg.leafConstruct = construct
	cfg.leafDestruct = destruct
}

// SetRouting replaces the default key routing.
func (cfg *Config[K, L, N]) SetRouting(routing KeyRouting[K]) {
	cfg.checkMutable("SetRouting")
	assert(routing != nil, "SetRouting: routing must not be nil")
	cfg.routing = routing
}

// SetObserver installs a function which is called after every mutation of a
// tree using this configuration.
func (cfg *Config[K, L, N]) SetObserver(observer func(Event[K])) {
	cfg.checkMutable("SetObserver")
	cfg.observer = observer
}

// Retain increments the reference count and returns the configuration.
func (cfg *Config[K, L, N]) Retain() *Config[K, L, N] {
	assert(cfg.refs > 0, "Retain: configuration already released")
	cfg.refs++
	return cfg
}

// Release decrements the reference count. The last release drops all
// callbacks; the configuration cannot be used for new trees afterwards.
func (cfg *Config[K, L, N]) Release() {
	if cfg.refs <= 0 {
		if debugChecks {
			contractViolation("Release: configuration already released")
		}
		return
	}
	cfg.refs--
	if cfg.refs == 0 {
		if debugChecks && cfg.trees > 0 {
			contractViolation("Release: %d trees still use the configuration", cfg.trees)
		}
		cfg.routing = nil
		cfg.leafConstruct, cfg.leafDestruct = nil, nil
		cfg.nodeConstruct, cfg.nodeDestruct, cfg.nodeUpdate = nil, nil, nil
		cfg.observer = nil
	}
}

func (cfg *Config[K, L, N]) released() bool {
	return cfg.refs <= 0
}

func (cfg *Config[K, L, N]) checkMutable(what string) {
	if debugChecks && cfg.frozen {
		contractViolation("%s: configuration is already in use by a tree", what)
	}
}

func (cfg *Config[K, L, N]) freeze() {
	cfg.frozen = true
}

func (cfg *Config[K, L, N]) notify(op Op, key K) {
	if cfg.observer != nil {
		cfg.observer(Event[K]{Op: op, Key: key})
	}
}

// --- Events ----------------------------------------------------------------

// Op is the kind of a tree mutation.
type Op uint8

// Tree mutations reported to observers.
const (
	Inserted Op = iota + 1
	Replaced
	Removed
	Cleared
)

func (op Op) String() string {
	switch op {
	case Inserted:
		return "inserted"
	case Replaced:
		return "replaced"
	case Removed:
		return "removed"
	case Cleared:
		return "cleared"
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// Event describes a tree mutation. For Cleared events, Key is the zero value.
type Event[K Key] struct {
	Op  Op
	Key K
}
