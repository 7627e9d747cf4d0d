package services

import (
	"sort"

	"github.com/vytor/drillflash/internal/models"
)

const (
	// recentWindow is the trailing history used for per-card averages.
	recentWindow = 5

	minPatternObservations = 3
	weakPatternAccuracy    = 0.6
	strongPatternAccuracy  = 0.8

	focusAccuracy    = 0.8
	slowResponseMs   = 10_000
	fastResponseMs   = 5_000
	reviewsToMastery = 8
	daysPerReview    = 3
)

func (s *schedulerService) CalculateStats(cards []models.ReviewCard) models.ReviewStats {
	now := s.now()
	stats := models.ReviewStats{TotalCards: len(cards)}
	if len(cards) == 0 {
		return stats
	}

	var strength float64
	for _, c := range cards {
		strength += c.Memory.Strength
		if !c.Memory.NextReview.After(now) {
			stats.DueCards++
		}
		if isMastered(c) {
			stats.MasteredCards++
		}
		if c.State == models.CardStateLearning {
			stats.LearningCards++
		}
	}
	stats.AverageStrength = strength / float64(len(cards))
	stats.AverageAccuracy, stats.AverageResponseTime = recentAverages(cards)
	return stats
}

// recentAverages returns the mean of every card's trailing accuracy and
// response time. Cards without history are skipped.
func recentAverages(cards []models.ReviewCard) (accuracy, responseTime float64) {
	var accSum, rtSum float64
	var accN, rtN int
	for _, c := range cards {
		if acc, ok := c.Performance.RecentAccuracy(recentWindow); ok {
			accSum += acc
			accN++
		}
		if rt, ok := c.Performance.RecentResponseTime(recentWindow); ok {
			rtSum += rt
			rtN++
		}
	}
	if accN > 0 {
		accuracy = accSum / float64(accN)
	}
	if rtN > 0 {
		responseTime = rtSum / float64(rtN)
	}
	return accuracy, responseTime
}

func (s *schedulerService) AnalyzePerformance(cards []models.ReviewCard) models.PerformanceAnalysis {
	tallies := make(map[string]*models.PatternStat)
	notMastered := 0
	for _, c := range cards {
		if !isMastered(c) {
			notMastered++
		}
		if c.Content.Pattern == "" {
			continue
		}
		correct, total := c.Performance.RecentOutcomes(recentWindow)
		t, ok := tallies[c.Content.Pattern]
		if !ok {
			t = &models.PatternStat{Pattern: c.Content.Pattern}
			tallies[c.Content.Pattern] = t
		}
		t.Correct += correct
		t.Total += total
	}

	analysis := models.PerformanceAnalysis{
		Patterns:             make([]models.PatternStat, 0, len(tallies)),
		WeakPatterns:         []string{},
		StrongPatterns:       []string{},
		EstimatedMasteryDays: notMastered * reviewsToMastery * daysPerReview,
	}
	for _, t := range tallies {
		if t.Total > 0 {
			t.Accuracy = float64(t.Correct) / float64(t.Total)
		}
		analysis.Patterns = append(analysis.Patterns, *t)
	}
	sort.Slice(analysis.Patterns, func(i, j int) bool {
		return analysis.Patterns[i].Pattern < analysis.Patterns[j].Pattern
	})
	for _, p := range analysis.Patterns {
		if p.Total < minPatternObservations {
			continue
		}
		switch {
		case p.Accuracy < weakPatternAccuracy:
			analysis.WeakPatterns = append(analysis.WeakPatterns, p.Pattern)
		case p.Accuracy > strongPatternAccuracy:
			analysis.StrongPatterns = append(analysis.StrongPatterns, p.Pattern)
		}
	}

	accuracy, responseTime := recentAverages(cards)
	analysis.RecommendedFocus = recommendFocus(accuracy, responseTime)
	return analysis
}

func recommendFocus(accuracy, responseTimeMs float64) models.Focus {
	if accuracy > focusAccuracy {
		switch {
		case responseTimeMs > slowResponseMs:
			return models.FocusSpeed
		case responseTimeMs < fastResponseMs:
			return models.FocusRetention
		}
	}
	return models.FocusAccuracy
}

// LearningMetrics summarises cards into the inputs of
// ConfigProvider.SuggestAdjustments. Retention is the mean memory strength.
func (s *schedulerService) LearningMetrics(cards []models.ReviewCard, sessionsPerWeek float64) models.LearningMetrics {
	accuracy, _ := recentAverages(cards)
	m := models.LearningMetrics{Accuracy: accuracy, StudyFrequency: sessionsPerWeek}
	if len(cards) > 0 {
		var strength float64
		for _, c := range cards {
			strength += c.Memory.Strength
		}
		m.Retention = strength / float64(len(cards))
	}
	return m
}
