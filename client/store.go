package client

import "errors"

// CollectionState tracks where a cached collection is in its load cycle.
type CollectionState string

const (
	StateIdle      CollectionState = "idle"
	StateLoading   CollectionState = "loading"
	StatePopulated CollectionState = "populated"
	StateErrored   CollectionState = "errored"
)

// Store caches one server collection. Mutations are applied only from
// fulfilled responses; a rejected request leaves the items untouched and
// parks the message in FormError for the form to display.
type Store struct {
	EntityKey string
	Items     []Entity
	State     CollectionState
	Saving    bool
	FormError string
}

func NewStore(entityKey string) *Store {
	return &Store{
		EntityKey: entityKey,
		Items:     []Entity{},
		State:     StateIdle,
	}
}

func (s *Store) LoadStart() {
	s.State = StateLoading
}

// LoadFulfilled replaces the collection from a raw list payload. An
// unrecognized shape empties the cache rather than corrupting it.
func (s *Store) LoadFulfilled(body []byte) {
	items, _ := DecodeList(body, s.EntityKey)
	s.Items = items
	s.State = StatePopulated
}

func (s *Store) LoadRejected(err error) {
	s.State = StateErrored
	s.FormError = errorMessage(err)
}

func (s *Store) MutationPending() {
	s.Saving = true
	s.FormError = ""
}

// CreateFulfilled appends the created entity exactly once.
func (s *Store) CreateFulfilled(entity Entity) {
	s.Saving = false
	s.Items = append(s.Items, entity)
}

// UpdateFulfilled replaces the entry whose id matches. Other entries are
// never touched; an unknown id is a no-op.
func (s *Store) UpdateFulfilled(entity Entity) {
	s.Saving = false
	id := entity.ID()
	for i := range s.Items {
		if s.Items[i].ID() == id {
			s.Items[i] = entity
			return
		}
	}
}

// DeleteFulfilled filters out the entry with the given id.
func (s *Store) DeleteFulfilled(id int64) {
	s.Saving = false
	filtered := s.Items[:0]
	for _, item := range s.Items {
		if item.ID() != id {
			filtered = append(filtered, item)
		}
	}
	s.Items = filtered
}

// MutationRejected records the failure. The cached items stay at their
// pre-request value.
func (s *Store) MutationRejected(err error) {
	s.Saving = false
	s.FormError = errorMessage(err)
}

func errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	if err != nil {
		return err.Error()
	}
	return fallbackErrorMessage
}

// CrateSubmission is the client-side form state for crate creation. Validate
// blocks the submission before any network call when a required field or the
// GPS fix is missing.
type CrateSubmission struct {
	QRCode       string
	BatchID      int64
	Weight       float64
	SupervisorID int64
	VarietyID    int64
	Latitude     float64
	Longitude    float64
	HasGPSFix    bool
}

func (c *CrateSubmission) Validate() error {
	if c.BatchID == 0 {
		return errors.New("batch is required")
	}
	if c.Weight <= 0 {
		return errors.New("weight is required")
	}
	if c.SupervisorID == 0 {
		return errors.New("supervisor is required")
	}
	if !c.HasGPSFix {
		return errors.New("GPS location has not been captured")
	}
	return nil
}

// BatchAcceptsCrates gates the crate-addition actions in the UI. Only an
// open batch takes new crates.
func BatchAcceptsCrates(batch Entity) bool {
	status, _ := batch["status"].(string)
	return status == "open"
}
