// SPDX-License-Identifier: MPL-2.0

package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/charmbracelet/log"

	"github.com/ernfleet/cauldron/pkg/cauldron"
	"github.com/ernfleet/cauldron/pkg/identity"
	"github.com/ernfleet/cauldron/pkg/resolver"
	"github.com/ernfleet/cauldron/pkg/store"
)

type (
	// Store is the transactional store a Service writes through.
	Store interface {
		RunTransaction(ctx context.Context, req store.Request) error
		Read(ctx context.Context) (*cauldron.Document, error)
		ReadFile(ctx context.Context, name string) ([]byte, error)
	}

	// Service performs release operations against one Cauldron.
	Service struct {
		store    Store
		resolver *resolver.Resolver
		logger   *log.Logger
	}

	// Option configures a Service.
	Option func(*Service)

	// CreateOptions configures CreateVersion.
	CreateOptions struct {
		// CopyFrom, when complete, seeds the new version with the container
		// of an existing one.
		CopyFrom identity.Descriptor
		// ContainerVersion is recorded on the new version when set.
		ContainerVersion string
	}

	// Options configures AddMiniApps.
	Options struct {
		// Force records the highest version of conflicting dependencies
		// instead of failing.
		Force bool
		// ContainerVersion is recorded on the version when set.
		ContainerVersion string
		// Tag tags the resulting commit.
		Tag string
	}

	// Plan is the outcome of resolving modules against a version, before
	// anything is committed.
	Plan struct {
		Descriptor identity.Descriptor
		// Resolution is the resolution of the modules alone.
		Resolution resolver.Resolution
		// Existing is the native dependency set recorded for the version.
		Existing []identity.Dependency
		// Merged is the set the version would record.
		Merged []identity.Dependency
		// Compatibility holds one report per module, in input order.
		Compatibility []resolver.CompatibilityReport
	}

	// UpgradeResult reports the schema versions before and after UpgradeSchema.
	UpgradeResult struct {
		From string
		To   string
	}
)

// WithLogger sets the logger used for progress and warnings.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a Service writing through st. A nil resolver resolves
// without exclusions.
func New(st Store, res *resolver.Resolver, opts ...Option) *Service {
	s := &Service{store: st, resolver: res, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = resolver.New(resolver.WithLogger(s.logger))
	}
	return s
}

// Get returns the releases matched by desc. A zero descriptor matches every
// release.
func (s *Service) Get(ctx context.Context, desc identity.Descriptor) ([]cauldron.Release, error) {
	doc, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	if desc.Name != "" {
		if _, err := doc.NativeApp(desc.Name); err != nil {
			return nil, err
		}
	}
	releases := doc.Versions(desc)
	if desc.IsComplete() && len(releases) == 0 {
		return nil, &cauldron.NotFoundError{Kind: "version", Key: desc.String()}
	}
	return releases, nil
}

// Document returns the whole synced document.
func (s *Service) Document(ctx context.Context) (*cauldron.Document, error) {
	return s.store.Read(ctx)
}

// CreateVersion adds the version desc, creating its application and
// platform as needed.
func (s *Service) CreateVersion(ctx context.Context, desc identity.Descriptor, opts CreateOptions) error {
	if err := desc.RequireComplete(); err != nil {
		return err
	}
	copyFrom := opts.CopyFrom.IsComplete()
	if opts.CopyFrom != (identity.Descriptor{}) && !copyFrom {
		return opts.CopyFrom.RequireComplete()
	}

	message := "Create version " + desc.String()
	if copyFrom {
		message += " from " + opts.CopyFrom.String()
	}
	return s.store.RunTransaction(ctx, store.Request{
		Descriptor:       desc,
		CommitMessage:    message,
		ContainerVersion: opts.ContainerVersion,
		Mutate: func(doc *cauldron.Document) error {
			if copyFrom {
				_, err := doc.CopyVersion(opts.CopyFrom, desc)
				return err
			}
			_, err := doc.AddVersion(desc)
			return err
		},
	})
}

// Plan resolves modules against the dependencies recorded for desc without
// changing the store.
func (s *Service) Plan(ctx context.Context, desc identity.Descriptor, modules []resolver.ModuleDependencySet) (*Plan, error) {
	if err := desc.RequireComplete(); err != nil {
		return nil, err
	}
	doc, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	v, err := doc.Version(desc)
	if err != nil {
		return nil, err
	}
	return s.plan(desc, v, modules), nil
}

func (s *Service) plan(desc identity.Descriptor, v *cauldron.Version, modules []resolver.ModuleDependencySet) *Plan {
	existing := v.Container.NativeDeps
	res := s.resolver.Resolve(modules)
	p := &Plan{
		Descriptor: desc,
		Resolution: res,
		Existing:   existing,
		Merged:     s.resolver.Merge(res.Resolved, existing),
	}
	for _, m := range modules {
		p.Compatibility = append(p.Compatibility, s.resolver.Check(m, existing))
	}
	return p
}

// AddMiniApps adds modules to the container of desc, replacing MiniApps of
// the same identity, and records the merged native dependency set.
// Conflicting declarations fail with a *resolver.ConflictError unless
// opts.Force is set. The returned plan reflects the committed state.
func (s *Service) AddMiniApps(ctx context.Context, desc identity.Descriptor, modules []resolver.ModuleDependencySet, opts Options) (*Plan, error) {
	if err := desc.RequireComplete(); err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		return nil, errors.New("no MiniApps to add")
	}

	// Conflicts depend only on the modules, so they are checked before the
	// store is touched.
	if err := s.resolver.Resolve(modules).Enforce(opts.Force); err != nil {
		return nil, err
	}

	var plan *Plan
	err := s.store.RunTransaction(ctx, store.Request{
		Descriptor:       desc,
		CommitMessage:    addMessage(desc, modules),
		Tag:              opts.Tag,
		ContainerVersion: opts.ContainerVersion,
		Mutate: func(doc *cauldron.Document) error {
			v, err := doc.Version(desc)
			if err != nil {
				return err
			}
			plan = s.plan(desc, v, modules)
			for _, c := range plan.Resolution.Conflicts {
				s.logger.Warn("Forcing conflicting native dependency", "dependency", c.Dependency.String(), "selected", c.Versions[len(c.Versions)-1])
			}

			for _, m := range modules {
				if m.Module == nil {
					return errors.New("module without a package path")
				}
				if _, ok := v.MiniApp(m.Module); ok {
					err = doc.UpdateMiniApp(desc, m.Module)
				} else {
					err = doc.AddMiniApp(desc, m.Module)
				}
				if err != nil {
					return err
				}
			}
			return doc.SetNativeDependencies(desc, s.pinned(plan.Merged))
		},
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// pinned drops dependencies that no module gave a version to; the store only
// records pinned versions.
func (s *Service) pinned(deps []identity.Dependency) []identity.Dependency {
	out := make([]identity.Dependency, 0, len(deps))
	for _, dep := range deps {
		if !dep.HasVersion() {
			s.logger.Warn("Skipping native dependency without a version", "dependency", dep.String())
			continue
		}
		out = append(out, dep)
	}
	return out
}

// RemoveMiniApp removes the MiniApp sharing pkg's identity from desc. The
// native dependency set is left unchanged.
func (s *Service) RemoveMiniApp(ctx context.Context, desc identity.Descriptor, pkg identity.PackagePath) error {
	if err := desc.RequireComplete(); err != nil {
		return err
	}
	return s.store.RunTransaction(ctx, store.Request{
		Descriptor:    desc,
		CommitMessage: fmt.Sprintf("Remove %s from %s", pkg.Identity(), desc),
		Mutate: func(doc *cauldron.Document) error {
			return doc.RemoveMiniApp(desc, pkg)
		},
	})
}

// MarkReleased flags desc as released, optionally tagging the commit.
func (s *Service) MarkReleased(ctx context.Context, desc identity.Descriptor, tag string) error {
	if err := desc.RequireComplete(); err != nil {
		return err
	}
	return s.store.RunTransaction(ctx, store.Request{
		Descriptor:    desc,
		CommitMessage: "Release " + desc.String(),
		Tag:           tag,
		Mutate: func(doc *cauldron.Document) error {
			return doc.MarkReleased(desc)
		},
	})
}

// SetContainerVersion records the container version of desc.
func (s *Service) SetContainerVersion(ctx context.Context, desc identity.Descriptor, containerVersion string) error {
	if err := desc.RequireComplete(); err != nil {
		return err
	}
	return s.store.RunTransaction(ctx, store.Request{
		Descriptor:    desc,
		CommitMessage: fmt.Sprintf("Set container version of %s to %s", desc, containerVersion),
		Mutate: func(doc *cauldron.Document) error {
			return doc.SetContainerVersion(desc, containerVersion)
		},
	})
}

// UpgradeSchema rewrites the stored document at the current schema version.
// Upgrading a current document changes nothing.
func (s *Service) UpgradeSchema(ctx context.Context) (UpgradeResult, error) {
	result := UpgradeResult{From: cauldron.CurrentSchemaVersion, To: cauldron.CurrentSchemaVersion}
	data, err := s.store.ReadFile(ctx, cauldron.FileName)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return result, nil
	case err != nil:
		return result, err
	}

	from, err := schemaVersionOf(data)
	if err != nil {
		return result, err
	}
	result.From = from
	if from == cauldron.CurrentSchemaVersion {
		return result, nil
	}

	s.logger.Info("Upgrading cauldron schema", "from", from, "to", cauldron.CurrentSchemaVersion)
	err = s.store.RunTransaction(ctx, store.Request{
		CommitMessage: fmt.Sprintf("Upgrade cauldron schema from %s to %s", from, cauldron.CurrentSchemaVersion),
		Mutate:        func(*cauldron.Document) error { return nil },
	})
	return result, err
}

func addMessage(desc identity.Descriptor, modules []resolver.ModuleDependencySet) string {
	if len(modules) == 1 && modules[0].Module != nil {
		return fmt.Sprintf("Add %s to %s", modules[0].Module, desc)
	}
	return fmt.Sprintf("Add %d MiniApps to %s", len(modules), desc)
}
