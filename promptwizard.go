// Package promptwizard assembles job specifications for a remote
// prompt-optimization service and drives their execution. A Wizard owns one
// form's state: the prompt, use case, dataset mappings, metric and optimizer
// selections, and the model role assignments. Once the form validates, Submit
// creates the remote project and opens the live optimization stream.
package promptwizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/weave-labs/promptwizard/client"
	"github.com/weave-labs/promptwizard/config"
	"github.com/weave-labs/promptwizard/providers"
	"github.com/weave-labs/promptwizard/roles"
	"github.com/weave-labs/promptwizard/session"
	"github.com/weave-labs/promptwizard/utils"
	"github.com/weave-labs/promptwizard/wizard"
)

// ErrSessionActive is returned when Submit is called while a previous
// session is still submitting, connecting, or streaming. The UI should
// disable the submit action; this guard holds even when it does not.
var ErrSessionActive = errors.New("an optimization session is already active")

// ErrNotReady is returned when Submit is called on an incomplete form. The
// wrapped message lists the missing requirements.
var ErrNotReady = errors.New("wizard form is not ready to submit")

// Wizard is the single source of truth for one configuration session.
// Engine operations are synchronous; the only asynchronous component is the
// optimization stream returned by Submit.
type Wizard struct {
	Form *wizard.FormData

	cfg       *config.Config
	logger    utils.Logger
	registry  *providers.Registry
	models    *roles.Engine
	validator *wizard.Validator
	submitter *client.SubmissionClient
	datasets  *client.DatasetClient

	mu         sync.Mutex
	submitting bool
	stream     *session.Stream
}

// New creates a Wizard from environment configuration plus overrides.
func New(opts ...config.ConfigOption) (*Wizard, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := utils.NewLogger(cfg.LogLevel)
	registry := providers.NewRegistry()

	return &Wizard{
		Form:      wizard.NewFormData(),
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		models:    roles.NewEngine(registry, logger),
		validator: wizard.NewValidator(registry),
		submitter: client.NewSubmissionClient(cfg, logger),
		datasets:  client.NewDatasetClient(cfg, logger),
	}, nil
}

// Models is the role-assignment engine for this wizard's configurations.
func (w *Wizard) Models() *roles.Engine {
	return w.models
}

// Providers returns the provider catalog.
func (w *Wizard) Providers() *providers.Registry {
	return w.registry
}

// Datasets returns the dataset service client.
func (w *Wizard) Datasets() *client.DatasetClient {
	return w.datasets
}

// SectionStatus reports the completion state of one form section.
func (w *Wizard) SectionStatus(section wizard.Section) wizard.SectionStatus {
	return w.validator.SectionStatus(section, w.snapshotForm())
}

// ReadyToSubmit reports whether every section is complete and the role slots
// are covered.
func (w *Wizard) ReadyToSubmit() bool {
	return w.validator.IsReadyToSubmit(w.snapshotForm())
}

// MissingRequirements lists what still blocks submission, in section order.
func (w *Wizard) MissingRequirements() []string {
	return w.validator.MissingRequirements(w.snapshotForm())
}

// Submit validates the form, creates the remote project, and opens the
// optimization stream. Only one session may be in flight per wizard; a new
// submission always produces a brand-new session, never a reused channel.
func (w *Wizard) Submit(ctx context.Context, projectName string) (*session.Stream, error) {
	w.mu.Lock()
	if w.submitting || (w.stream != nil && w.stream.Session().Status.Active()) {
		w.mu.Unlock()
		return nil, ErrSessionActive
	}
	w.submitting = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
	}()

	fd := w.snapshotForm()
	if missing := w.validator.MissingRequirements(fd); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrNotReady, missing)
	}
	if err := wizard.ValidateForm(fd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotReady, err)
	}

	result, err := w.submitter.CreateProject(ctx, fd, projectName)
	if err != nil {
		return nil, err
	}
	if result.ActualName != result.RequestedName {
		w.logger.Info("project was renamed by the server",
			"requested", result.RequestedName, "actual", result.ActualName)
	}

	stream, err := session.Open(ctx, w.cfg.WebSocketBase(), result.JobID,
		session.WithLogger(w.logger),
		session.WithHandshakeTimeout(w.cfg.HandshakeTimeout))
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.stream = stream
	w.mu.Unlock()
	return stream, nil
}

// Cancel aborts the active session, if any.
func (w *Wizard) Cancel() {
	w.mu.Lock()
	stream := w.stream
	w.mu.Unlock()
	if stream != nil {
		stream.Cancel()
	}
}

// Session returns a snapshot of the most recent session state. The boolean
// is false when nothing has been submitted yet.
func (w *Wizard) Session() (session.Session, bool) {
	w.mu.Lock()
	stream := w.stream
	w.mu.Unlock()
	if stream == nil {
		return session.Session{}, false
	}
	return stream.Session(), true
}

// snapshotForm syncs the engine's configurations into the form before
// validation or submission, so the engine stays the single owner of the
// model set.
func (w *Wizard) snapshotForm() *wizard.FormData {
	w.Form.ModelConfigs = w.models.Configs()
	return w.Form
}
