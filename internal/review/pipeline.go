package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/canon/internal/agents"
	"github.com/dshills/canon/internal/diff"
	"github.com/dshills/canon/internal/providers"
	"github.com/dshills/canon/internal/redact"
	"github.com/dshills/canon/internal/signatures"
	"github.com/dshills/canon/internal/standards"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var logger = log.WithField("package", "review")

// EmptyDiffText is the result text when a diff has no reviewable files.
const EmptyDiffText = "No reviewable changes found in this diff; nothing was sent to the model."

// maxConcurrency limits parallel runs in RunAll.
const maxConcurrency = 4

// Gateway is the model invocation surface the pipeline depends on.
type Gateway interface {
	Invoke(ctx context.Context, call providers.Call) (providers.Response, error)
}

// Options tunes a Pipeline.
type Options struct {
	MaxPromptBytes int
	MaxTokens      int
	Temperature    float64
	Ignore         []string
	RedactSecrets  bool
}

// Pipeline turns a diff into an AnalysisResult. Its fields are read-only
// after construction, so one Pipeline may serve concurrent runs.
type Pipeline struct {
	registry  *agents.Registry
	gateway   Gateway
	documents map[string]standards.Document
	table     standards.Table
	opts      Options
}

// NewPipeline wires the collaborators of a run.
func NewPipeline(registry *agents.Registry, gw Gateway, docs map[string]standards.Document, table standards.Table, opts Options) *Pipeline {
	if docs == nil {
		docs = map[string]standards.Document{}
	}
	return &Pipeline{
		registry:  registry,
		gateway:   gw,
		documents: docs,
		table:     table,
		opts:      opts,
	}
}

type run struct {
	res   AnalysisResult
	entry *log.Entry
	start time.Time
}

func (r *run) advance(s State) {
	r.res.State = s
	r.entry.WithField("state", s).Debug("pipeline transition")
}

func (r *run) fail(f *Failure) AnalysisResult {
	r.res.Error = f
	r.res.Text = ""
	r.advance(StateFailed)
	return r.finish()
}

func (r *run) finish() AnalysisResult {
	r.res.Duration = time.Since(r.start)
	return r.res
}

// Run executes one analysis. It never returns an error or panics: every
// outcome, including failures, is carried by the result.
func (p *Pipeline) Run(ctx context.Context, req AnalysisRequest) (res AnalysisResult) {
	req = req.withDefaults()
	r := &run{
		res: AnalysisResult{
			RunID:     uuid.NewString(),
			AgentType: req.AgentType,
			ModelName: req.ModelName,
		},
		start: time.Now(),
	}
	r.entry = logger.WithFields(log.Fields{"run": r.res.RunID, "agent": req.AgentType, "model": req.ModelName})
	r.advance(StateStart)

	defer func() {
		if v := recover(); v != nil {
			r.entry.WithField("panic", v).Error("pipeline panicked")
			res = r.fail(&Failure{Kind: KindInternal, Message: fmt.Sprintf("internal error: %v", v)})
		}
	}()

	raw := req.Diff
	if p.opts.RedactSecrets {
		raw, r.res.Redactions = redact.SecretsCount(raw)
	}
	files, warnings := diff.Parse(raw)
	for _, w := range warnings {
		r.entry.WithField("section", w.Section).Warn(w.Reason)
		r.res.Warnings = append(r.res.Warnings, w.String())
	}
	files = diff.Filter(files, p.opts.Ignore)
	r.res.Files = diff.Paths(files)
	r.advance(StateDiffParsed)

	// An empty diff succeeds before the agent is looked up, so a bad
	// agent type is only reported when there is something to review.
	if len(files) == 0 {
		r.res.Empty = true
		r.res.Text = EmptyDiffText
		r.advance(StateSucceeded)
		return r.finish()
	}

	resolved := standards.Resolve(files, p.documents, p.table)
	r.advance(StateStandardsResolved)

	def, err := p.registry.Get(agents.Type(req.AgentType))
	if err != nil {
		return r.fail(&Failure{Kind: KindUnknownAgent, Message: err.Error()})
	}
	r.advance(StateAgentSelected)

	fit := fitPrompt(resolved.Documents, diff.Keep(diff.Sections(raw), files), p.opts.MaxPromptBytes)
	r.res.Standards = fit.keys
	if fit.trunc.Any() {
		t := fit.trunc
		r.res.Truncation = &t
		r.entry.WithFields(log.Fields{
			"standardsDropped": t.StandardsDropped,
			"filesOmitted":     len(t.FilesOmitted),
			"diffCut":          t.DiffCut,
		}).Warn("prompt truncated to fit budget")
	}

	in := agents.Input{Standards: fit.standards, Diff: fit.diff}
	if def.NeedsSignatures {
		in.Signatures = signatures.Format(signatures.Extract(files))
	}
	system, user, err := agents.Render(def, in)
	if err != nil {
		return r.fail(&Failure{Kind: KindPrompt, Message: err.Error()})
	}
	r.entry.WithFields(log.Fields{"systemBytes": len(system), "userBytes": len(user)}).Debug("prompt built")
	r.advance(StatePromptBuilt)

	out := invoke(ctx, p.gateway, req, system, user, p.opts)
	r.advance(StateModelInvoked)
	r.res.TokensUsed = out.TokensUsed
	if out.Error != nil {
		return r.fail(out.Error)
	}
	r.res.Text = out.Text
	r.advance(StateSucceeded)
	return r.finish()
}

// Invoke calls the model once and reports the outcome as an AnalysisResult
// whose State is Succeeded or Failed.
func Invoke(ctx context.Context, gw Gateway, req AnalysisRequest, system, user string) AnalysisResult {
	req = req.withDefaults()
	res := invoke(ctx, gw, req, system, user, Options{})
	res.RunID = uuid.NewString()
	return res
}

func invoke(ctx context.Context, gw Gateway, req AnalysisRequest, system, user string, opts Options) AnalysisResult {
	start := time.Now()
	res := AnalysisResult{AgentType: req.AgentType, ModelName: req.ModelName}

	resp, err := gw.Invoke(ctx, providers.Call{
		Model:        req.ModelName,
		APIKey:       req.APIKey,
		SystemPrompt: system,
		UserContent:  user,
		MaxTokens:    opts.MaxTokens,
		Temperature:  opts.Temperature,
	})
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = providerFailure(err, req.ModelName, req.APIKey)
		res.State = StateFailed
		return res
	}
	res.Text = resp.Text
	res.TokensUsed = resp.TokensUsed
	res.State = StateSucceeded
	return res
}

func providerFailure(err error, model, apiKey string) *Failure {
	var pe *providers.ProviderError
	if errors.As(err, &pe) {
		return &Failure{
			Kind:     KindProvider,
			Provider: pe.Provider,
			Message:  redact.Scrub(pe.Message, apiKey),
			Auth:     pe.IsAuth(),
			Timeout:  pe.Timeout,
		}
	}
	provider, _ := providers.Split(model)
	return &Failure{Kind: KindProvider, Provider: provider, Message: redact.Scrub(err.Error(), apiKey)}
}

// RunAll runs independent requests concurrently. Results are in input order.
func (p *Pipeline) RunAll(ctx context.Context, reqs []AnalysisRequest) []AnalysisResult {
	results := make([]AnalysisResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = p.Run(gctx, req)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Post delivers res to every sink and joins their errors.
func Post(ctx context.Context, res AnalysisResult, sinks ...Sink) error {
	var errs []error
	for _, s := range sinks {
		if err := s.Post(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
