package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/carelink/carelink-api/internal/config"
)

// SourceKeywords marks analyses produced by the built-in keyword table.
const SourceKeywords = "keywords"

var ErrSymptomsRequired = errors.New("at least one symptom is required")

// SymptomAnalysis is the checker's response. Source names who produced it,
// so clients can tell a degraded keyword match from the external analyzer.
type SymptomAnalysis struct {
	PossibleConditions []string `json:"possible_conditions"`
	Recommendation     string   `json:"recommendation"`
	Urgency            string   `json:"urgency"`
	Source             string   `json:"source"`
}

// Analyzer is the external symptom analysis provider.
type Analyzer interface {
	Analyze(ctx context.Context, symptoms []string) (*SymptomAnalysis, error)
}

// keywordConditions maps normalized symptom keywords to candidate
// conditions. This is a triage aid, not a diagnosis.
var keywordConditions = map[string][]string{
	"fever":               {"Viral infection", "Influenza"},
	"cough":               {"Common cold", "Bronchitis"},
	"headache":            {"Tension headache", "Migraine"},
	"sore throat":         {"Pharyngitis", "Tonsillitis"},
	"fatigue":             {"Anemia", "Viral infection"},
	"nausea":              {"Gastroenteritis", "Food poisoning"},
	"chest pain":          {"Angina", "Muscle strain"},
	"shortness of breath": {"Asthma", "Respiratory infection"},
	"rash":                {"Allergic reaction", "Dermatitis"},
	"dizziness":           {"Vertigo", "Low blood pressure"},
	"back pain":           {"Muscle strain", "Sciatica"},
	"diarrhea":            {"Gastroenteritis", "Food intolerance"},
}

// urgentKeywords escalate the recommendation regardless of matches.
var urgentKeywords = []string{"chest pain", "shortness of breath"}

type SymptomService struct {
	analyzer Analyzer
	log      *zap.Logger
}

// NewSymptomService wires the optional external analyzer; pass nil to run on
// the keyword table alone.
func NewSymptomService(analyzer Analyzer, log *zap.Logger) *SymptomService {
	return &SymptomService{analyzer: analyzer, log: log}
}

// Analyze runs the external analyzer when configured and falls back to the
// keyword table when it is absent or fails. The fallback path is always
// marked with Source "keywords".
func (s *SymptomService) Analyze(ctx context.Context, symptoms []string) (*SymptomAnalysis, error) {
	cleaned := make([]string, 0, len(symptoms))
	for _, sym := range symptoms {
		if v := strings.TrimSpace(sym); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrSymptomsRequired
	}

	if s.analyzer != nil {
		analysis, err := s.analyzer.Analyze(ctx, cleaned)
		if err == nil {
			return analysis, nil
		}
		s.log.Warn("external symptom analyzer failed, using keyword fallback", zap.Error(err))
	}
	return analyzeByKeywords(cleaned), nil
}

func analyzeByKeywords(symptoms []string) *SymptomAnalysis {
	seen := map[string]bool{}
	var conditions []string
	urgent := false

	for _, sym := range symptoms {
		key := strings.ToLower(strings.TrimSpace(sym))
		for _, u := range urgentKeywords {
			if strings.Contains(key, u) {
				urgent = true
			}
		}
		for kw, conds := range keywordConditions {
			if !strings.Contains(key, kw) {
				continue
			}
			for _, c := range conds {
				if !seen[c] {
					seen[c] = true
					conditions = append(conditions, c)
				}
			}
		}
	}
	sort.Strings(conditions)

	analysis := &SymptomAnalysis{
		PossibleConditions: conditions,
		Source:             SourceKeywords,
	}
	switch {
	case urgent:
		analysis.Urgency = "high"
		analysis.Recommendation = "Seek medical attention promptly. These symptoms can indicate a serious condition."
	case len(conditions) > 0:
		analysis.Urgency = "moderate"
		analysis.Recommendation = "Consider booking an appointment with a doctor to discuss these symptoms."
	default:
		analysis.Urgency = "low"
		analysis.Recommendation = "No common condition matched. Book an appointment if symptoms persist or worsen."
	}
	return analysis
}

// HTTPAnalyzer calls an external symptom analysis API over HTTP with a
// bounded timeout.
type HTTPAnalyzer struct {
	url    string
	apiKey string
	source string
	client *http.Client
}

func NewHTTPAnalyzer(cfg config.SymptomConfig) *HTTPAnalyzer {
	return &HTTPAnalyzer{
		url:    cfg.AnalyzerURL,
		apiKey: cfg.APIKey,
		source: "analyzer",
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (a *HTTPAnalyzer) Analyze(ctx context.Context, symptoms []string) (*SymptomAnalysis, error) {
	body, err := json.Marshal(map[string][]string{"symptoms": symptoms})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling symptom analyzer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("symptom analyzer returned status %d", resp.StatusCode)
	}

	var analysis SymptomAnalysis
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		return nil, fmt.Errorf("decoding symptom analyzer response: %w", err)
	}
	analysis.Source = a.source
	return &analysis, nil
}
