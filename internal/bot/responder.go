// Package bot appends a canned reply to the history shortly after each
// user message. The responder owns its timers: replies can be cancelled
// at shutdown and append failures are logged instead of vanishing.
package bot

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"chathub/pkg/models"
)

const Name = "ChatBot"

const defaultDelay = time.Second

var replies = []string{
	"That's interesting!",
	"Tell me more about that.",
	"I see what you mean.",
	"Thanks for sharing!",
	"How does that make you feel?",
	"Good point!",
}

// Replies returns the candidate reply texts.
func Replies() []string {
	out := make([]string, len(replies))
	copy(out, replies)
	return out
}

// Appender is satisfied by the message store.
type Appender interface {
	Append(sender, text string) (models.Message, error)
}

type Responder struct {
	store   Appender
	publish func(models.Message)
	delay   time.Duration

	done chan struct{}
	wg   sync.WaitGroup
}

// New builds a responder. publish may be nil; delay <= 0 means the
// default one second.
func New(store Appender, delay time.Duration, publish func(models.Message)) *Responder {
	if delay <= 0 {
		delay = defaultDelay
	}
	return &Responder{
		store:   store,
		publish: publish,
		delay:   delay,
		done:    make(chan struct{}),
	}
}

// Notify schedules a reply to a user message without blocking the caller.
// Messages sent by the bot itself are ignored so replies cannot cascade.
func (r *Responder) Notify(msg models.Message) {
	if msg.Sender == Name {
		return
	}
	select {
	case <-r.done:
		return
	default:
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		timer := time.NewTimer(r.delay)
		defer timer.Stop()
		select {
		case <-r.done:
			return
		case <-timer.C:
		}

		reply, err := r.store.Append(Name, replies[rand.Intn(len(replies))])
		if err != nil {
			log.Printf("bot: append reply: %v", err)
			return
		}
		if r.publish != nil {
			r.publish(reply)
		}
	}()
}

// Close cancels pending replies and waits for in-flight ones to finish.
func (r *Responder) Close() {
	close(r.done)
	r.wg.Wait()
}
