package usecase

import "hobbyhub/services/community/internal/entity"

type DraftState int

const (
	DraftEditing DraftState = iota
	DraftUploading
	DraftSubmitting
	DraftSucceeded
)

func (s DraftState) String() string {
	switch s {
	case DraftEditing:
		return "editing"
	case DraftUploading:
		return "uploading"
	case DraftSubmitting:
		return "submitting"
	case DraftSucceeded:
		return "succeeded"
	default:
		return "unknown"
	}
}

// Draft is a post being composed. A failed submission returns it to
// DraftEditing with the error kept in Err so it can be corrected and retried.
type Draft struct {
	Input entity.CreatePostInput
	Image *StagedFile

	state  DraftState
	err    error
	postID string
}

func NewDraft(input entity.CreatePostInput, image *StagedFile) *Draft {
	return &Draft{Input: input, Image: image}
}

func (d *Draft) State() DraftState { return d.state }
func (d *Draft) Err() error        { return d.err }
func (d *Draft) PostID() string    { return d.postID }

func (d *Draft) transition(state DraftState) {
	d.state = state
}

func (d *Draft) fail(err error) error {
	d.state = DraftEditing
	d.err = err
	return err
}

func (d *Draft) succeed(postID string) {
	d.state = DraftSucceeded
	d.err = nil
	d.postID = postID
}
