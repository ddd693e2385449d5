// Package automsg runs the periodic promotional broadcasts: one loop per
// destination channel, each purging the latest few messages and reposting
// the product embed on a fixed interval.
package automsg

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
)

// Sender is the outbound slice of the platform client the scheduler needs.
type Sender interface {
	SendEmbed(channelID string, embed *discordgo.MessageEmbed) error
	Purge(channelID string, limit int) error
}

// Scheduler keys running broadcast loops by destination channel. At most one
// loop per channel: starting again replaces the previous loop.
type Scheduler struct {
	mu         sync.Mutex
	cron       *cron.Cron
	jobs       map[string]cron.EntryID
	sender     Sender
	purgeLimit int
}

func New(sender Sender, purgeLimit int) *Scheduler {
	if purgeLimit <= 0 {
		purgeLimit = 5
	}
	return &Scheduler{
		cron:       cron.New(),
		jobs:       make(map[string]cron.EntryID),
		sender:     sender,
		purgeLimit: purgeLimit,
	}
}

// Run starts the underlying cron. Jobs for different channels run on their
// own goroutines and never block one another.
func (s *Scheduler) Run() {
	s.cron.Start()
}

// Shutdown stops the cron and waits for in-flight jobs to finish.
func (s *Scheduler) Shutdown() {
	<-s.cron.Stop().Done()
}

// Start registers a broadcast loop for channelID, cancelling any loop already
// registered there. The payload is sent once immediately; every interval
// thereafter the loop purges the most recent messages and sends it again.
// The replace-check and registration happen under one lock so two concurrent
// starts cannot leave two loops on the same channel.
func (s *Scheduler) Start(channelID string, embed *discordgo.MessageEmbed, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("automsg: interval must be positive, got %s", interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.jobs[channelID]; ok {
		s.cron.Remove(id)
		delete(s.jobs, channelID)
		log.Printf("[AutoMsg] replaced running loop for channel %s", channelID)
	}

	if err := s.sender.SendEmbed(channelID, embed); err != nil {
		return fmt.Errorf("automsg: initial send to %s: %w", channelID, err)
	}

	id, err := s.cron.AddFunc("@every "+interval.String(), func() {
		if err := s.sender.Purge(channelID, s.purgeLimit); err != nil {
			log.Printf("[AutoMsg] purge %s: %v", channelID, err)
		}
		if err := s.sender.SendEmbed(channelID, embed); err != nil {
			log.Printf("[AutoMsg] send %s: %v", channelID, err)
		}
	})
	if err != nil {
		return fmt.Errorf("automsg: schedule: %w", err)
	}

	s.jobs[channelID] = id
	log.Printf("[AutoMsg] started loop for channel %s every %s", channelID, interval)
	return nil
}

// Stop cancels the loop for channelID. Returns false when none was running.
func (s *Scheduler) Stop(channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.jobs[channelID]
	if !ok {
		return false
	}
	s.cron.Remove(id)
	delete(s.jobs, channelID)
	log.Printf("[AutoMsg] stopped loop for channel %s", channelID)
	return true
}

// StopAll cancels every running loop and reports how many were stopped.
// Zero is the "nothing to stop" case, not an error.
func (s *Scheduler) StopAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.jobs)
	for channelID, id := range s.jobs {
		s.cron.Remove(id)
		delete(s.jobs, channelID)
	}
	if n > 0 {
		log.Printf("[AutoMsg] stopped %d loops", n)
	}
	return n
}

// Len reports the number of running loops.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
