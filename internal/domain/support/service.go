package support

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"colors-app-go/internal/domain/feeling"
	"colors-app-go/internal/domain/group"
)

var (
	ErrSelfSupport       = errors.New("cannot send support to yourself")
	ErrRecipientNotFound = errors.New("recipient is not a member of this group")
	ErrRecipientNoPhone  = errors.New("recipient has no phone number")
)

type Roster interface {
	ListMembers(ctx context.Context, userID, groupID string) ([]group.MemberProfile, error)
}

type Moods interface {
	LatestByMember(ctx context.Context, userID, groupID string) (map[string]feeling.Feeling, error)
}

// Draft is everything the client needs to open the native SMS composer.
type Draft struct {
	RecipientID    string `json:"recipient_id"`
	RecipientName  string `json:"recipient_name"`
	RecipientPhone string `json:"recipient_phone"`
	Keyword        string `json:"keyword,omitempty"`
	Body           string `json:"body"`
	SMSURI         string `json:"sms_uri"`
}

type Service struct {
	catalog Catalog
	roster  Roster
	moods   Moods

	mu      sync.Mutex
	chooser Chooser
}

func NewService(catalog Catalog, roster Roster, moods Moods, chooser Chooser) *Service {
	if chooser == nil {
		chooser = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Service{
		catalog: catalog,
		roster:  roster,
		moods:   moods,
		chooser: chooser,
	}
}

func (s *Service) Catalog() Catalog {
	return s.catalog
}

// Compose drafts a support text from sender to recipient. Both must be in the
// group; the message is keyed on the recipient's latest word in that group.
func (s *Service) Compose(ctx context.Context, senderID, groupID, recipientID string) (*Draft, error) {
	if senderID == recipientID {
		return nil, ErrSelfSupport
	}

	members, err := s.roster.ListMembers(ctx, senderID, groupID)
	if err != nil {
		return nil, err
	}

	var recipient *group.MemberProfile
	for i := range members {
		if members[i].UserID == recipientID {
			recipient = &members[i]
			break
		}
	}
	if recipient == nil {
		return nil, ErrRecipientNotFound
	}
	if recipient.Phone == nil || *recipient.Phone == "" {
		return nil, ErrRecipientNoPhone
	}

	latest, err := s.moods.LatestByMember(ctx, senderID, groupID)
	if err != nil {
		return nil, err
	}
	word := ""
	if mood, ok := latest[recipientID]; ok {
		word = mood.Word
	}

	s.mu.Lock()
	message := s.catalog.Pick(recipient.DisplayName, word, s.chooser)
	s.mu.Unlock()

	return &Draft{
		RecipientID:    recipient.UserID,
		RecipientName:  recipient.DisplayName,
		RecipientPhone: *recipient.Phone,
		Keyword:        message.Keyword,
		Body:           message.Body,
		SMSURI:         SMSURI(*recipient.Phone, message.Body),
	}, nil
}
