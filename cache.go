package jsxcss

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/yacobolo/jsxcss/internal/sheet"
	"github.com/yacobolo/jsxcss/internal/style"
)

var (
	// ErrOptionsInjected is returned when InjectOptions is called twice.
	ErrOptionsInjected = errors.New("jsxcss: cache options already injected")
	// ErrCacheInUse is returned when InjectOptions is called after the
	// cache produced its first class name.
	ErrCacheInUse = errors.New("jsxcss: cache options injected after first use")
)

// CacheOptions configures a Cache.
type CacheOptions struct {
	// Strategy creates the class name function. Defaults to HashClassNames.
	Strategy Strategy
	// ClassName overrides Strategy with a fixed class name function.
	ClassName ClassNameFunc
	// OnInsertRule sees every new rule. Returning false keeps the rule out
	// of the cache's stylesheet.
	OnInsertRule func(rule, key string) bool
	// Pretty formats rules over multiple lines.
	Pretty bool
	Logger *zap.Logger
}

// Option configures NewCache.
type Option func(*CacheOptions)

// WithStrategy sets the class name strategy.
func WithStrategy(s Strategy) Option {
	return func(o *CacheOptions) { o.Strategy = s }
}

// WithClassName sets a fixed class name function.
func WithClassName(fn ClassNameFunc) Option {
	return func(o *CacheOptions) { o.ClassName = fn }
}

// WithOnInsertRule sets the rule callback.
func WithOnInsertRule(fn func(rule, key string) bool) Option {
	return func(o *CacheOptions) { o.OnInsertRule = fn }
}

// WithPretty enables multi-line rules.
func WithPretty() Option {
	return func(o *CacheOptions) { o.Pretty = true }
}

// WithLogger sets the diagnostics logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *CacheOptions) { o.Logger = log }
}

// Cache memoizes style keys to class names and emits each rule at most once
// over its lifetime. Use one Cache per request when rendering concurrently;
// a Cache is safe for concurrent use but its output is shared by all callers.
type Cache struct {
	mu sync.Mutex

	opts     CacheOptions
	log      *zap.Logger
	namer    ClassNameFunc
	sheet    *sheet.Sheet
	injected bool
	used     bool

	// classNames maps property keys to class names.
	classNames map[string]string
	// bags maps whole-bag keys to their class list.
	bags     map[string]string
	inserted map[string]bool
}

// NewCache creates an isolated cache.
func NewCache(opts ...Option) *Cache {
	var o CacheOptions
	for _, opt := range opts {
		opt(&o)
	}
	c := &Cache{}
	c.configure(o)
	return c
}

func (c *Cache) configure(o CacheOptions) {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Strategy == nil {
		o.Strategy = HashClassNames
	}
	c.opts = o
	c.log = o.Logger.Named("cache")
	c.sheet = sheet.New(o.Logger)
	c.reset()
}

func (c *Cache) reset() {
	c.namer = c.opts.ClassName
	if c.namer == nil {
		c.namer = c.opts.Strategy()
	}
	c.classNames = make(map[string]string)
	c.bags = make(map[string]string)
	c.inserted = make(map[string]bool)
	c.sheet.Reset()
}

// InjectOptions replaces the cache configuration. It may be called once,
// before the first GetComponentProps call.
func (c *Cache) InjectOptions(o CacheOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.injected {
		return ErrOptionsInjected
	}
	if c.used {
		return ErrCacheInUse
	}
	c.injected = true
	c.configure(o)
	return nil
}

// GetComponentProps converts the style props of props into class names and
// returns the remaining props with the class names merged into
// classNamePropKey ("className" when empty). nil props return nil.
func (c *Cache) GetComponentProps(props style.Props, classNamePropKey string) style.Props {
	if props == nil {
		return nil
	}
	if classNamePropKey == "" {
		classNamePropKey = "className"
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.used = true

	parsed, componentProps := style.Classify(props, classNamePropKey, nil)
	bagKey := parsed.Key()
	if classes, ok := c.bags[bagKey]; ok {
		return style.MergeClassName(componentProps.Clone(), classNamePropKey, classes)
	}

	result := style.Build(parsed, componentProps, classNamePropKey, style.BuildOptions{
		ClassName: c.className,
		Logger:    c.opts.Logger,
	})
	for _, rule := range result.Rules {
		c.insert(rule)
	}
	c.bags[bagKey] = result.ClassNameString()
	return result.Props
}

func (c *Cache) className(key string) string {
	if name, ok := c.classNames[key]; ok {
		return name
	}
	name := c.namer(key)
	c.classNames[key] = name
	return name
}

func (c *Cache) insert(rule style.Rule) {
	if c.inserted[rule.Key] {
		return
	}
	c.inserted[rule.Key] = true

	text := rule.Text
	if c.opts.Pretty {
		text = sheet.Format(text)
	}
	if c.opts.OnInsertRule != nil && !c.opts.OnInsertRule(text, rule.Key) {
		return
	}
	if err := c.sheet.Insert(text); err != nil {
		c.log.Debug("Rule not inserted", zap.String("key", rule.Key), zap.Error(err))
	}
}

// Reset forgets every class name and rule. Injected options are kept and
// counters restart.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// CSS returns every rule inserted since the last Reset.
func (c *Cache) CSS() string {
	return c.stylesheet().String()
}

// Flush returns the rules inserted since the previous Flush.
func (c *Cache) Flush() string {
	return c.stylesheet().Flush()
}

// Rules lists the inserted rules in insertion order.
func (c *Cache) Rules() []string {
	return c.stylesheet().Rules()
}

func (c *Cache) stylesheet() *sheet.Sheet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sheet
}

var (
	defaultMu    sync.Mutex
	defaultCache *Cache
)

// DefaultCache returns the process-wide cache used by the package-level
// functions. It is shared mutable state; prefer NewCache for request scoped
// rendering.
func DefaultCache() *Cache {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultCache == nil {
		defaultCache = NewCache()
	}
	return defaultCache
}

// GetComponentProps calls GetComponentProps on the default cache.
func GetComponentProps(props style.Props, classNamePropKey string) style.Props {
	return DefaultCache().GetComponentProps(props, classNamePropKey)
}

// InjectOptions calls InjectOptions on the default cache.
func InjectOptions(o CacheOptions) error {
	return DefaultCache().InjectOptions(o)
}

// Reset calls Reset on the default cache.
func Reset() {
	DefaultCache().Reset()
}
