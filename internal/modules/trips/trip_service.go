package trips

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"voyage-trips/internal/models"
	"voyage-trips/pkg/recommend"
	"voyage-trips/pkg/usermgmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressFunc receives coarse progress updates during long-running
// operations. A nil reporter is allowed; trip identifiers are delivered as
// soon as they exist.
type ProgressFunc func(progress int, message string, tripID string)

// ServiceInterface defines the trip lifecycle operations exposed to the
// HTTP and stream handlers.
type ServiceInterface interface {
	CreateTrip(ctx context.Context, form models.TripForm, sess models.Session, report ProgressFunc) (*models.TripResult, error)
	SaveTrip(ctx context.Context, req models.SaveTripRequest, sess models.Session) error
	GetTrip(ctx context.Context, tripID string) (models.Itinerary, error)
	ListTrips(ctx context.Context, userID string) ([]models.StoredTrip, error)
	RegenerateActivity(ctx context.Context, tripID string, patch models.ActivityPatch) (models.Itinerary, error)
	DeleteActivity(ctx context.Context, tripID, activityID string) (models.Itinerary, error)
	RegenerateWithPreferences(ctx context.Context, tripID string, req models.RegenerationRequest, report ProgressFunc) (*models.TripResult, error)
	DeleteTrip(ctx context.Context, tripID string) error
}

// participationTimeout bounds the detached preference/participant recording
// that runs after a successful creation.
const participationTimeout = 30 * time.Second

// Service coordinates the draft store, the durable repository and the two
// outbound gateways. No transaction spans them: the draft copy is
// authoritative until persisted, durable writes on regeneration paths are
// best-effort, and save compensates by deleting its own insert when
// association fails.
//
// There is no per-identifier locking; two concurrent regenerations of the
// same trip race with last-writer-wins semantics on both stores.
type Service struct {
	repo      RepositoryInterface
	drafts    DraftStore
	recommend recommend.ClientInterface
	users     usermgmt.ClientInterface
	draftTTL  time.Duration
}

func NewService(repo RepositoryInterface, drafts DraftStore, rec recommend.ClientInterface, users usermgmt.ClientInterface, draftTTL time.Duration) *Service {
	return &Service{
		repo:      repo,
		drafts:    drafts,
		recommend: rec,
		users:     users,
		draftTTL:  draftTTL,
	}
}

// CreateTrip generates a trip identifier, asks the recommendation service
// for an itinerary and stages the tagged result as an expiring draft. On
// upstream failure nothing is written. For authenticated non-guest callers
// the preference/participant recording runs detached; its failures are
// logged and never roll back the created trip.
func (s *Service) CreateTrip(ctx context.Context, form models.TripForm, sess models.Session, report ProgressFunc) (*models.TripResult, error) {
	if report == nil {
		report = func(int, string, string) {}
	}

	if err := form.Data.Validate(); err != nil {
		return nil, err
	}
	if form.Data.Type != form.TripType {
		return nil, fmt.Errorf("%w: data payload is %q but trip type is %q", models.ErrValidation, form.Data.Type, form.TripType)
	}

	tripID := primitive.NewObjectID().Hex()
	report(10, "Processing trip request...", tripID)

	startDate, err := parseStartDate(form.StartDate)
	if err != nil {
		return nil, err
	}
	duration := form.Duration
	if duration < 1 {
		duration = 1
	}
	endDate := startDate.AddDate(0, 0, duration)

	report(20, "Preparing request for recommendations service...", tripID)

	genReq := recommend.TripRequest{
		TripID:          tripID,
		Questionnaire:   questionnaireFromQuestions(form.Preferences.Questions),
		StartDate:       startDate.Format(time.RFC3339),
		EndDate:         endDate.Format(time.RFC3339),
		Budget:          form.Budget,
		Name:            form.DisplayName,
		MustVisitPlaces: form.MustVisitPlaces,
		Keywords:        form.Keywords,
		Country:         form.Country,
		City:            form.City,
		IsGroup:         form.IsGroup,
		Data:            form.Data,
		TripType:        form.TripType,
	}

	report(30, "Calling recommendations service...", tripID)

	rawItinerary, err := s.recommend.GenerateTrip(ctx, genReq)
	if err != nil {
		return nil, fmt.Errorf("service.CreateTrip: %w", err)
	}

	report(70, "Processing recommendations response...", tripID)

	it, err := models.DecodeItinerary(rawItinerary)
	if err != nil {
		return nil, fmt.Errorf("service.CreateTrip: %w", err)
	}
	it.SetMeta(models.TripMeta{
		TripType: form.TripType,
		Country:  form.Country,
		City:     form.City,
		IsGroup:  form.IsGroup,
	})
	snapshot := form.Data
	it.SetSnapshot(&snapshot)
	it.SetCoordinates(form.Data.ExtractCoordinates())
	if std, ok := it.(*models.StandardItinerary); ok {
		std.Budget = form.Budget
		std.MustVisitPlaces = form.MustVisitPlaces
		std.Keywords = form.Keywords
	}

	doc, err := models.EncodeItinerary(it)
	if err != nil {
		return nil, fmt.Errorf("service.CreateTrip: %w", err)
	}

	report(80, "Saving draft to cache...", tripID)
	s.drafts.Set(tripID, doc, s.draftTTL)

	if sess.Authenticated() {
		report(90, "Adding creator as participant...", tripID)
		go s.recordParticipation(tripID, form, sess)
	}

	return &models.TripResult{
		TripID:       tripID,
		Itinerary:    it,
		PreferenceID: form.PreferenceID,
	}, nil
}

// recordParticipation saves the questionnaire as a reusable preference set
// (unless the caller supplied one) and registers the creator as participant.
// Runs detached from the request with its own deadline.
func (s *Service) recordParticipation(tripID string, form models.TripForm, sess models.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), participationTimeout)
	defer cancel()

	preferenceID := form.PreferenceID
	if preferenceID == "" {
		prefReq := usermgmt.PreferencesRequest{
			Name:    form.Preferences.PreferencesName,
			Answers: preferenceAnswersFromQuestions(form.Preferences.Questions),
		}
		id, err := s.users.SavePreferences(ctx, prefReq, sess.Token)
		if err != nil {
			log.Printf("trips: saving preferences for trip %s: %v", tripID, err)
		} else {
			preferenceID = id
		}
	}

	assoc := usermgmt.TripAssociation{
		TripID:       tripID,
		IsGroup:      form.IsGroup,
		PreferenceID: preferenceID,
	}
	if err := s.users.AssociateTrip(ctx, assoc, sess.Token); err != nil {
		log.Printf("trips: adding creator as participant of trip %s: %v", tripID, err)
	}
}

// SaveTrip commits a draft itinerary to durable storage. Existence of the
// durable record is the idempotency guard: a second save is a no-op and the
// association call is not repeated. When association fails, the
// just-inserted record is deleted again so no orphaned trip survives.
func (s *Service) SaveTrip(ctx context.Context, req models.SaveTripRequest, sess models.Session) error {
	it, err := models.DecodeItinerary(req.Itinerary)
	if err != nil {
		return fmt.Errorf("%w: %s", models.ErrValidation, err)
	}

	_, err = s.repo.FindByID(ctx, req.ID)
	if err == nil {
		return nil // already saved
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("service.SaveTrip: %w", err)
	}

	meta := it.Meta()
	meta.TripType = req.TripType
	meta.IsGroup = req.IsGroup
	it.SetMeta(meta)

	if err := s.repo.Upsert(ctx, req.ID, it, sess.UserID); err != nil {
		return fmt.Errorf("service.SaveTrip: %w", err)
	}

	if !sess.Authenticated() {
		return nil
	}

	assoc := usermgmt.TripAssociation{
		TripID:       req.ID,
		IsGroup:      req.IsGroup,
		PreferenceID: req.PreferenceID,
	}
	if err := s.users.AssociateTrip(ctx, assoc, sess.Token); err != nil {
		if delErr := s.repo.Delete(ctx, req.ID); delErr != nil {
			log.Printf("trips: rolling back save of trip %s: %v", req.ID, delErr)
		}
		return fmt.Errorf("service.SaveTrip: %w: %w", models.ErrAssociation, err)
	}
	return nil
}

// GetTrip is a pure read-through: draft store first, then the durable
// repository. A durable hit warms the draft store best-effort.
func (s *Service) GetTrip(ctx context.Context, tripID string) (models.Itinerary, error) {
	if doc, ok := s.drafts.Get(tripID); ok {
		it, err := models.DecodeItinerary(doc)
		if err == nil {
			return it, nil
		}
		log.Printf("trips: corrupt draft for trip %s: %v", tripID, err)
	}

	it, err := s.repo.FindByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.GetTrip: %w", err)
	}

	if doc, err := models.EncodeItinerary(it); err == nil {
		s.drafts.Set(tripID, doc, s.draftTTL)
	} else {
		log.Printf("trips: warming draft for trip %s: %v", tripID, err)
	}
	return it, nil
}

// ListTrips returns the durable trips the user participates in.
func (s *Service) ListTrips(ctx context.Context, userID string) ([]models.StoredTrip, error) {
	stored, err := s.repo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.ListTrips: %w", err)
	}
	return stored, nil
}

// RegenerateActivity replaces one activity through the recommendation
// service, keeping the trip's tag and scope. The refreshed itinerary is
// written to the draft store; the durable write is best-effort.
func (s *Service) RegenerateActivity(ctx context.Context, tripID string, patch models.ActivityPatch) (models.Itinerary, error) {
	if patch.ActivityID == "" {
		return nil, fmt.Errorf("%w: activity id is required", models.ErrValidation)
	}

	it, err := s.loadTrip(ctx, tripID, false)
	if err != nil {
		return nil, err
	}
	meta := it.Meta()

	raw, err := models.EncodeItinerary(it)
	if err != nil {
		return nil, fmt.Errorf("service.RegenerateActivity: %w", err)
	}

	updatedRaw, err := s.recommend.RegenerateActivity(ctx, recommend.ActivityRequest{
		TripID:    tripID,
		TripType:  meta.TripType,
		Itinerary: raw,
		Activity:  patch,
	})
	if err != nil {
		return nil, fmt.Errorf("service.RegenerateActivity: %w", err)
	}

	updated, err := s.retag(updatedRaw, it)
	if err != nil {
		return nil, fmt.Errorf("service.RegenerateActivity: %w", err)
	}

	if err := s.stageAndPersist(ctx, tripID, updated); err != nil {
		return nil, fmt.Errorf("service.RegenerateActivity: %w", err)
	}
	return updated, nil
}

// DeleteActivity drops one activity via the recommendation service and
// refreshes the draft copy. This path reads the draft store only: an
// expired draft means the editing session is over, and the durable copy is
// deliberately not consulted.
func (s *Service) DeleteActivity(ctx context.Context, tripID, activityID string) (models.Itinerary, error) {
	if activityID == "" {
		return nil, fmt.Errorf("%w: activity id is required", models.ErrValidation)
	}

	doc, ok := s.drafts.Get(tripID)
	if !ok {
		return nil, models.ErrNotFound
	}
	it, err := models.DecodeItinerary(doc)
	if err != nil {
		return nil, fmt.Errorf("service.DeleteActivity: %w", err)
	}
	meta := it.Meta()

	updatedRaw, err := s.recommend.RemoveActivity(ctx, recommend.ActivityRemoval{
		TripID:     tripID,
		TripType:   meta.TripType,
		Itinerary:  doc,
		ActivityID: activityID,
	})
	if err != nil {
		return nil, fmt.Errorf("service.DeleteActivity: %w", err)
	}

	updated, err := s.retag(updatedRaw, it)
	if err != nil {
		return nil, fmt.Errorf("service.DeleteActivity: %w", err)
	}

	updatedDoc, err := models.EncodeItinerary(updated)
	if err != nil {
		return nil, fmt.Errorf("service.DeleteActivity: %w", err)
	}
	s.drafts.Set(tripID, updatedDoc, s.draftTTL)
	return updated, nil
}

// RegenerateWithPreferences re-asks the original geographic question with
// updated preference answers. The original query is rebuilt through the
// four-tier location fallback; the regenerated itinerary replaces the draft
// copy and is best-effort written to durable storage.
func (s *Service) RegenerateWithPreferences(ctx context.Context, tripID string, req models.RegenerationRequest, report ProgressFunc) (*models.TripResult, error) {
	if report == nil {
		report = func(int, string, string) {}
	}

	report(10, "Validating preferences data...", tripID)
	if req.PreferenceID == "" {
		return nil, fmt.Errorf("%w: preference id is required", models.ErrValidation)
	}

	report(20, "Loading trip data...", tripID)
	it, err := s.loadTrip(ctx, tripID, true)
	if err != nil {
		return nil, err
	}
	meta := it.Meta()

	location, source := ReconstructLocation(it)
	if source == SourceDefault {
		log.Printf("trips: trip %s has no recoverable location data, regenerating from default coordinates", tripID)
	}

	report(30, "Preparing regeneration request...", tripID)

	seed := it.Seed()
	applySeedDefaults(&seed)

	genReq := recommend.TripRequest{
		TripID:          tripID,
		Questionnaire:   questionnaireFromAnswers(req.Answers),
		StartDate:       seed.StartDate,
		EndDate:         seed.EndDate,
		Budget:          seed.Budget,
		Name:            seed.Name,
		MustVisitPlaces: seed.MustVisit,
		Keywords:        seed.Keywords,
		Country:         meta.Country,
		City:            meta.City,
		IsGroup:         meta.IsGroup,
		Data:            location,
		TripType:        meta.TripType,
	}

	report(40, "Calling recommendations service...", tripID)

	updatedRaw, err := s.recommend.RegenerateTrip(ctx, genReq)
	if err != nil {
		return nil, fmt.Errorf("service.RegenerateWithPreferences: %w", err)
	}

	report(80, "Processing new itinerary...", tripID)

	updated, err := s.retag(updatedRaw, it)
	if err != nil {
		return nil, fmt.Errorf("service.RegenerateWithPreferences: %w", err)
	}

	report(90, "Updating database...", tripID)
	if err := s.stageAndPersist(ctx, tripID, updated); err != nil {
		return nil, fmt.Errorf("service.RegenerateWithPreferences: %w", err)
	}

	return &models.TripResult{
		TripID:       tripID,
		Itinerary:    updated,
		PreferenceID: req.PreferenceID,
	}, nil
}

// DeleteTrip removes the durable record. The draft copy, if any, is left to
// lapse by expiration.
func (s *Service) DeleteTrip(ctx context.Context, tripID string) error {
	if err := s.repo.Delete(ctx, tripID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return fmt.Errorf("service.DeleteTrip: %w", err)
	}
	return nil
}

// loadTrip reads the trip draft-first, falling back to the durable store.
// When promote is set, a durable hit is staged back into the draft store so
// the edit session that follows works against the cache.
func (s *Service) loadTrip(ctx context.Context, tripID string, promote bool) (models.Itinerary, error) {
	if doc, ok := s.drafts.Get(tripID); ok {
		it, err := models.DecodeItinerary(doc)
		if err == nil {
			return it, nil
		}
		log.Printf("trips: corrupt draft for trip %s: %v", tripID, err)
	}

	it, err := s.repo.FindByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.loadTrip: %w", err)
	}

	if promote {
		if doc, err := models.EncodeItinerary(it); err == nil {
			s.drafts.Set(tripID, doc, s.draftTTL)
		}
	}
	return it, nil
}

// retag validates a regenerated itinerary into its variant and restores the
// metadata that must survive regeneration. The previous copy's snapshot and
// stored coordinates are carried forward when the response lacks them, so a
// regenerated trip stays regenerable.
func (s *Service) retag(raw []byte, previous models.Itinerary) (models.Itinerary, error) {
	updated, err := models.DecodeItinerary(raw)
	if err != nil {
		return nil, err
	}
	updated.SetMeta(previous.Meta())
	if updated.Snapshot() == nil {
		updated.SetSnapshot(previous.Snapshot())
	}
	if updated.Coordinates().Empty() {
		updated.SetCoordinates(previous.Coordinates())
	}
	return updated, nil
}

// stageAndPersist writes the itinerary to the draft store and then
// best-effort to the durable repository. The draft write is the commit
// point; a durable failure is logged and swallowed.
func (s *Service) stageAndPersist(ctx context.Context, tripID string, it models.Itinerary) error {
	doc, err := models.EncodeItinerary(it)
	if err != nil {
		return err
	}
	s.drafts.Set(tripID, doc, s.draftTTL)

	if err := s.repo.Upsert(ctx, tripID, it, ""); err != nil {
		log.Printf("trips: best-effort durable write for trip %s: %v", tripID, err)
	}
	return nil
}

// parseStartDate accepts RFC3339 timestamps with or without a zone
// designator.
func parseStartDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid start date %q", models.ErrValidation, value)
}

func applySeedDefaults(seed *models.RegenSeed) {
	now := time.Now().UTC()
	if seed.StartDate == "" {
		seed.StartDate = now.Format(time.RFC3339)
	}
	if seed.EndDate == "" {
		seed.EndDate = now.AddDate(0, 0, 3).Format(time.RFC3339)
	}
	if seed.Budget == 0 {
		seed.Budget = 1000
	}
	if seed.Name == "" {
		seed.Name = "Updated Trip"
	}
}

func questionnaireFromQuestions(questions []models.Question) []recommend.QuestionAnswer {
	out := make([]recommend.QuestionAnswer, 0, len(questions))
	for _, q := range questions {
		out = append(out, recommend.QuestionAnswer{QuestionID: q.QuestionID, Value: q.Value, Type: "scale"})
	}
	return out
}

func questionnaireFromAnswers(answers []models.PreferenceAnswer) []recommend.QuestionAnswer {
	out := make([]recommend.QuestionAnswer, 0, len(answers))
	for _, a := range answers {
		out = append(out, recommend.QuestionAnswer{QuestionID: a.QuestionID, Value: a.Value, Type: "scale"})
	}
	return out
}

func preferenceAnswersFromQuestions(questions []models.Question) []usermgmt.PreferenceAnswer {
	out := make([]usermgmt.PreferenceAnswer, 0, len(questions))
	for _, q := range questions {
		out = append(out, usermgmt.PreferenceAnswer{
			Answer:     usermgmt.PreferenceAnswerValue{Value: q.Value},
			QuestionID: q.QuestionID,
		})
	}
	return out
}
