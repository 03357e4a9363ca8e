package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/jrsteele09/learnpath-client/posts/media"
	"github.com/jrsteele09/learnpath-client/users"
	"github.com/rs/zerolog/log"
)

const MinWords = 50

// Keys of Composer.MediaErrors.
const (
	MediaErrorLimit    = "limit"
	MediaErrorType     = "type"
	MediaErrorDuration = "duration"
	MediaErrorUpload   = "upload"
)

const (
	msgRequired      = "Title and content are required"
	msgMinWords      = "Content must be at least %d words. Current word count: %d"
	msgPending       = "Please wait for media uploads to finish"
	msgNotLoggedIn   = "You must be logged in to create a post"
	msgCreateFailed  = "Failed to create post. "
	msgTryAgain      = "Please try again."
	msgCreatedNoID   = "Post was created but couldn't retrieve its details."
	msgAlreadySubmit = "Post is already being submitted"
)

// Creator dispatches the create request.
type Creator interface {
	Create(ctx context.Context, req CreateRequest) (string, error)
}

// Identity supplies the acting user.
type Identity interface {
	CurrentUser() (users.User, bool)
}

// Deleter is implemented by previewers that can remove an uploaded reference.
type Deleter interface {
	Delete(ctx context.Context, ref string) error
}

// Draft is the post being composed. Tags holds the raw comma separated input.
type Draft struct {
	Title   string
	Content string
	Tags    string
	Media   []media.Item
}

func (d Draft) Clone() Draft {
	out := d
	out.Media = append([]media.Item{}, d.Media...)
	return out
}

// WordCount counts whitespace separated words of the trimmed content.
func (d Draft) WordCount() int {
	return len(strings.Fields(d.Content))
}

// TagList splits the comma separated tags, trimming each and dropping blanks.
func (d Draft) TagList() []string {
	tags := []string{}
	for _, tag := range strings.Split(d.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Composer owns a post draft. Media is processed asynchronously and every
// completion is applied to the latest draft under the composer lock. After
// Close, late completions are dropped.
type Composer struct {
	creator   Creator
	identity  Identity
	previewer media.Previewer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	draft       Draft
	pending     int
	closed      bool
	submitting  bool
	mediaErrors map[string]string
	message     string
}

func NewComposer(creator Creator, identity Identity, previewer media.Previewer) (*Composer, error) {
	if creator == nil {
		return nil, errors.New("[PostComposer New] creator is required")
	}
	if identity == nil {
		return nil, errors.New("[PostComposer New] identity is required")
	}
	if previewer == nil {
		return nil, errors.New("[PostComposer New] previewer is required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Composer{
		creator:     creator,
		identity:    identity,
		previewer:   previewer,
		ctx:         ctx,
		cancel:      cancel,
		mediaErrors: make(map[string]string),
	}, nil
}

func (c *Composer) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Clone()
}

// MediaErrors returns a copy of the per-category media messages.
func (c *Composer) MediaErrors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.mediaErrors))
	for k, v := range c.mediaErrors {
		out[k] = v
	}
	return out
}

func (c *Composer) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// Pending is the number of media items still being processed.
func (c *Composer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

func (c *Composer) SetTitle(title string) {
	c.mu.Lock()
	c.draft.Title = title
	c.mu.Unlock()
}

func (c *Composer) SetContent(content string) {
	c.mu.Lock()
	c.draft.Content = content
	c.mu.Unlock()
}

func (c *Composer) SetTags(tags string) {
	c.mu.Lock()
	c.draft.Tags = tags
	c.mu.Unlock()
}

func (c *Composer) SetMediaDescription(index int, description string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.draft.Media) {
		return false
	}
	c.draft.Media[index].Description = description
	return true
}

// Attach starts processing sources as media of the given kind. The whole
// batch is refused when it would take the draft past media.MaxItems, counting
// items still in flight. Sources of the wrong type are skipped and reported.
func (c *Composer) Attach(kind media.Kind, sources ...media.Source) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return apperrors.ErrDraftClosed
	}
	if len(c.draft.Media)+c.pending+len(sources) > media.MaxItems {
		c.mediaErrors[MediaErrorLimit] = media.MsgLimit
		return apperrors.Wrapf(apperrors.ErrMediaLimit, media.MsgLimit)
	}

	var rejected error
	for _, src := range sources {
		if err := media.CheckType(kind, src); err != nil {
			c.mediaErrors[MediaErrorType] = typeMessage(kind)
			rejected = err
			continue
		}
		c.pending++
		c.wg.Add(1)
		go c.process(kind, src)
	}
	return rejected
}

func typeMessage(kind media.Kind) string {
	if kind == media.KindVideo {
		return media.MsgVideoType
	}
	return media.MsgImageType
}

func (c *Composer) process(kind media.Kind, src media.Source) {
	defer c.wg.Done()
	item, err := media.Process(c.ctx, c.previewer, kind, src)
	c.complete(item, src.Name, err)
}

func (c *Composer) complete(item media.Item, name string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending--
	if c.closed {
		log.Debug().Str("name", name).Msg("Dropping media completion after close")
		return
	}
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrVideoTooLong):
			c.mediaErrors[MediaErrorDuration] = media.MsgVideoLong
		default:
			log.Err(err).Str("name", name).Msg("Failed to process media")
			c.mediaErrors[MediaErrorUpload] = fmt.Sprintf("Failed to process %s", name)
		}
		return
	}
	c.draft.Media = append(c.draft.Media, item)
}

// Wait blocks until every in-flight media item completed or ctx is done.
func (c *Composer) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RemoveMedia drops the item at index and clears media errors. Uploaded
// objects are deleted when the previewer supports it.
func (c *Composer) RemoveMedia(ctx context.Context, index int) bool {
	c.mu.Lock()
	if index < 0 || index >= len(c.draft.Media) {
		c.mu.Unlock()
		return false
	}
	removed := c.draft.Media[index]
	c.draft.Media = append(c.draft.Media[:index], c.draft.Media[index+1:]...)
	c.mediaErrors = make(map[string]string)
	c.mu.Unlock()

	if deleter, ok := c.previewer.(Deleter); ok {
		if err := deleter.Delete(ctx, removed.Preview); err != nil {
			log.Err(err).Str("name", removed.Name).Msg("Failed to delete removed media")
		}
	}
	return true
}

// Close marks the composer unmounted. In-flight processing is cancelled and
// results arriving afterwards are dropped.
func (c *Composer) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}

// Payload validates the draft and builds the create request.
func (c *Composer) Payload() (CreateRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payloadLocked()
}

func (c *Composer) payloadLocked() (CreateRequest, error) {
	d := c.draft
	if strings.TrimSpace(d.Title) == "" || strings.TrimSpace(d.Content) == "" {
		field := "title"
		if strings.TrimSpace(d.Title) != "" {
			field = "content"
		}
		c.message = msgRequired
		return CreateRequest{}, apperrors.NewValidationError(field, msgRequired)
	}
	if words := d.WordCount(); words < MinWords {
		c.message = fmt.Sprintf(msgMinWords, MinWords, words)
		return CreateRequest{}, apperrors.NewValidationError("content", c.message)
	}
	if c.pending > 0 {
		c.message = msgPending
		return CreateRequest{}, apperrors.NewValidationError("media", msgPending)
	}

	user, loggedIn := c.identity.CurrentUser()
	if !loggedIn || user.ID == "" {
		c.message = msgNotLoggedIn
		return CreateRequest{}, &apperrors.AuthenticationError{Reason: "no current user", Cause: apperrors.ErrNoSession}
	}

	req := CreateRequest{
		UserID:  user.ID,
		Title:   d.Title,
		Content: d.Content,
		Tags:    d.TagList(),
	}
	if len(d.Media) > 0 {
		req.Image = d.Media[0].Preview
		for _, item := range d.Media {
			req.MediaURLs = append(req.MediaURLs, item.Preview)
		}
	}
	return req, nil
}

// Submit validates and dispatches the draft. The draft is kept on failure.
func (c *Composer) Submit(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", apperrors.ErrDraftClosed
	}
	if c.submitting {
		c.mu.Unlock()
		return "", errors.New(msgAlreadySubmit)
	}
	c.message = ""
	c.mediaErrors = make(map[string]string)
	req, err := c.payloadLocked()
	if err != nil {
		c.mu.Unlock()
		return "", err
	}
	c.submitting = true
	c.mu.Unlock()

	id, err := c.creator.Create(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		if errors.Is(err, apperrors.ErrEmptyResponse) {
			c.message = msgCreatedNoID
		} else {
			c.message = msgCreateFailed + backendMessage(err, msgTryAgain)
		}
		log.Err(err).Str("title", req.Title).Msg("Failed to create post")
		return "", err
	}
	return id, nil
}

// backendMessage extracts the `message` field of an error response body.
func backendMessage(err error, fallback string) string {
	var transportErr *apperrors.TransportError
	if !errors.As(err, &transportErr) || transportErr.Body == "" {
		return fallback
	}
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal([]byte(transportErr.Body), &body) != nil || body.Message == "" {
		return fallback
	}
	return body.Message
}
