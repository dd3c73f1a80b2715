// Package generate runs the spend-then-generate workflow: debit first, call
// the provider, persist the artifact, refund on any failure after the debit.
package generate

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/musegen/muse-server/internal/credits"
	"github.com/musegen/muse-server/internal/objstore"
	"github.com/musegen/muse-server/internal/storage"
)

// Provider is the generation collaborator. Implemented by *genapi.Client.
type Provider interface {
	GenerateAvatar(ctx context.Context, prompt, size string) ([]byte, string, error)
	SynthesizeSpeech(ctx context.Context, text, voice string) ([]byte, string, error)
	GenerateStory(ctx context.Context, prompt string) (string, error)
	GenerateVideo(ctx context.Context, prompt string, pollInterval time.Duration) ([]byte, string, error)
}

type Service struct {
	store        *storage.Store
	objects      objstore.Store
	provider     Provider
	pricing      credits.Pricing
	pollInterval time.Duration
	timeout      time.Duration
	log          *zap.Logger
}

func NewService(store *storage.Store, objects objstore.Store, provider Provider, pricing credits.Pricing, pollInterval, timeout time.Duration, log *zap.Logger) *Service {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Service{
		store:        store,
		objects:      objects,
		provider:     provider,
		pricing:      pricing,
		pollInterval: pollInterval,
		timeout:      timeout,
		log:          log.Named("generate"),
	}
}

func (s *Service) Pricing() credits.Pricing { return s.pricing }

func (s *Service) Avatar(ctx context.Context, userID int64, prompt, size string) (*storage.Artifact, error) {
	return s.run(ctx, userID, s.pricing.AvatarCost(), storage.ArtifactImage, prompt,
		func(ctx context.Context) ([]byte, string, error) {
			return s.provider.GenerateAvatar(ctx, prompt, size)
		})
}

func (s *Service) Speech(ctx context.Context, userID int64, text, voice string) (*storage.Artifact, error) {
	cost := s.pricing.SpeechCost(len([]rune(text)))
	return s.run(ctx, userID, cost, storage.ArtifactSpeech, text,
		func(ctx context.Context) ([]byte, string, error) {
			return s.provider.SynthesizeSpeech(ctx, text, voice)
		})
}

func (s *Service) Story(ctx context.Context, userID int64, prompt string) (*storage.Artifact, error) {
	return s.run(ctx, userID, s.pricing.StoryCost(), storage.ArtifactStory, prompt,
		func(ctx context.Context) ([]byte, string, error) {
			text, err := s.provider.GenerateStory(ctx, prompt)
			if err != nil {
				return nil, "", err
			}
			return []byte(text), "text/plain", nil
		})
}

func (s *Service) Video(ctx context.Context, userID int64, prompt string) (*storage.Artifact, error) {
	return s.run(ctx, userID, s.pricing.VideoCost(), storage.ArtifactVideo, prompt,
		func(ctx context.Context) ([]byte, string, error) {
			pollCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			return s.provider.GenerateVideo(pollCtx, prompt, s.pollInterval)
		})
}

// run executes one spend-then-generate lifecycle. The debit is a single
// conditional decrement, so a balance below cost aborts with
// storage.ErrInsufficientCredits and no mutation. Any failure after the
// debit refunds the exact cost, whether the provider call, the upload or
// the record write failed.
func (s *Service) run(ctx context.Context, userID int64, cost int64, kind storage.ArtifactKind, prompt string, gen func(context.Context) ([]byte, string, error)) (*storage.Artifact, error) {
	if err := s.store.Debit(ctx, userID, cost); err != nil {
		return nil, err
	}
	s.log.Info("credits debited",
		zap.Int64("user_id", userID),
		zap.Int64("cost", cost),
		zap.String("kind", string(kind)))

	artifact, err := s.produce(ctx, userID, kind, prompt, gen)
	if err != nil {
		s.refund(userID, cost, kind)
		return nil, &Error{Reason: ClassifyFailure(err), Err: err}
	}
	return artifact, nil
}

func (s *Service) produce(ctx context.Context, userID int64, kind storage.ArtifactKind, prompt string, gen func(context.Context) ([]byte, string, error)) (*storage.Artifact, error) {
	data, contentType, err := gen(ctx)
	if err != nil {
		return nil, err
	}

	url, err := s.objects.Upload(ctx, data, contentType)
	if err != nil {
		return nil, err
	}

	artifact := storage.Artifact{
		UserID: userID,
		Kind:   kind,
		Prompt: prompt,
		URL:    url,
	}
	if err := s.store.CreateArtifact(ctx, &artifact); err != nil {
		// The uploaded object is orphaned here; left for an offline sweep.
		return nil, err
	}
	return &artifact, nil
}

// refund issues the compensating credit. It deliberately does not use the
// request context: the user may have navigated away, but the refund must
// still land.
func (s *Service) refund(userID, cost int64, kind storage.ArtifactKind) {
	refundCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.Credit(refundCtx, userID, cost); err != nil {
		s.log.Error("refund after failed generation did not land",
			zap.Int64("user_id", userID),
			zap.Int64("cost", cost),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return
	}
	s.log.Info("credits refunded",
		zap.Int64("user_id", userID),
		zap.Int64("cost", cost),
		zap.String("kind", string(kind)))
}
