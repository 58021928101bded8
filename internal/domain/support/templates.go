// Package support picks a canned supportive text for a friend and prepares
// the SMS hand-off to the device's messaging app.
package support

import (
	"net/url"
	"strings"
)

// Chooser picks an index in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type Chooser interface {
	IntN(n int) int
}

// Topic maps a set of feeling words to the messages that fit them.
type Topic struct {
	Keyword  string   `json:"keyword"`
	Synonyms []string `json:"synonyms"`
	Messages []string `json:"messages"`
}

func (t Topic) matches(word string) bool {
	if word == t.Keyword {
		return true
	}
	for _, synonym := range t.Synonyms {
		if word == synonym {
			return true
		}
	}
	return false
}

// Catalog is an ordered keyword table plus the fallback used when no topic matches.
type Catalog struct {
	Topics   []Topic  `json:"topics"`
	Fallback []string `json:"fallback"`
}

// DefaultCatalog holds the built-in messages. {name} is the friend's display
// name and {word} their latest word.
func DefaultCatalog() Catalog {
	return Catalog{
		Topics: []Topic{
			{
				Keyword:  "sad",
				Synonyms: []string{"down", "blue", "low", "lonely", "gloomy", "upset", "crying"},
				Messages: []string{
					"Hey {name}, saw you're feeling {word}. I'm here if you want to talk 💛",
					"Thinking of you today, {name}. Want to grab a coffee this week?",
				},
			},
			{
				Keyword:  "stressed",
				Synonyms: []string{"anxious", "overwhelmed", "nervous", "worried", "busy", "panicked"},
				Messages: []string{
					"{name}, you've got this. One thing at a time 💪",
					"Sending calm vibes your way, {name}. Need a hand with anything?",
				},
			},
			{
				Keyword:  "tired",
				Synonyms: []string{"exhausted", "sleepy", "drained", "burnt", "burned-out", "meh"},
				Messages: []string{
					"Rest up, {name}. You deserve a slow evening 😴",
					"Hope you get some good sleep tonight, {name}.",
				},
			},
			{
				Keyword:  "angry",
				Synonyms: []string{"mad", "annoyed", "frustrated", "furious", "irritated"},
				Messages: []string{
					"Ugh, sorry things are {word} today, {name}. Want to vent?",
					"{name}, I'm on your side. Call me if you need to let it out.",
				},
			},
			{
				Keyword:  "sick",
				Synonyms: []string{"ill", "unwell", "hurting", "pain", "flu"},
				Messages: []string{
					"Feel better soon, {name}! Can I bring you anything? 🍲",
				},
			},
			{
				Keyword:  "happy",
				Synonyms: []string{"great", "good", "excited", "joyful", "amazing", "grateful", "proud"},
				Messages: []string{
					"Love seeing you {word}, {name}! 🎉",
					"Yay {name}! What's the good news?",
				},
			},
		},
		Fallback: []string{
			"Hey {name}, just checking in. How are you really doing?",
			"Thinking of you, {name} 💛",
		},
	}
}

// Message is a selected and interpolated template.
type Message struct {
	Keyword  string `json:"keyword,omitempty"`
	Template string `json:"template"`
	Body     string `json:"body"`
}

// Pick selects a message for the friend's latest word. The first topic whose
// keyword or synonyms contain the word wins; otherwise the fallback list is used.
func (c Catalog) Pick(name, word string, chooser Chooser) Message {
	normalized := strings.ToLower(strings.TrimSpace(word))

	keyword := ""
	candidates := c.Fallback
	if normalized != "" {
		for _, topic := range c.Topics {
			if topic.matches(normalized) && len(topic.Messages) > 0 {
				keyword = topic.Keyword
				candidates = topic.Messages
				break
			}
		}
	}
	if len(candidates) == 0 {
		return Message{}
	}

	index := 0
	if chooser != nil && len(candidates) > 1 {
		index = chooser.IntN(len(candidates))
	}
	template := candidates[index]
	return Message{
		Keyword:  keyword,
		Template: template,
		Body:     Render(template, name, normalized),
	}
}

// Render fills {name} and {word}. An empty name becomes "friend" and an empty
// word becomes "off".
func Render(template, name, word string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "friend"
	}
	if word == "" {
		word = "off"
	}
	return strings.NewReplacer("{name}", name, "{word}", word).Replace(template)
}

// SMSURI builds an sms: link with a prefilled body. The "?&body=" form opens
// the compose sheet on both iOS and Android.
func SMSURI(phone, body string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(body), "+", "%20")
	return "sms:" + strings.ReplaceAll(phone, " ", "") + "?&body=" + escaped
}
