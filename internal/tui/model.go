package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trustrag/internal/compare"
	"trustrag/internal/domain"
	"trustrag/internal/service"
	"trustrag/internal/tier"
)

// RAGPort is the TUI-facing subset of the tiered RAG service.
type RAGPort interface {
	Ask(ctx context.Context, question string) (*service.Comparison, error)
	Summary() tier.Summary
	Records() []domain.DocumentScore
}

const sidebarWidth = 36

type answerMsg struct {
	cmp *service.Comparison
	err error
}

// Model is the Bubble Tea model for the side-by-side comparison chat.
type Model struct {
	ctx        context.Context
	service    RAGPort
	thresholds tier.Thresholds
	input      textinput.Model
	readyView  viewport.Model
	otherView  viewport.Model
	comparison *service.Comparison
	status     string
	busy       bool
	ready      bool
}

// New creates a new TUI model instance.
func New(ctx context.Context, svc RAGPort, th tier.Thresholds) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	return Model{
		ctx:        ctx,
		service:    svc,
		thresholds: th,
		input:      ti,
		readyView:  viewport.New(0, 0),
		otherView:  viewport.New(0, 0),
		status:     "Indexed. Ask a question to compare both tiers.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) ask(q string) tea.Cmd {
	return func() tea.Msg {
		cmp, err := m.service.Ask(m.ctx, q)
		return answerMsg{cmp: cmp, err: err}
	}
}

// Update handles key, window and answer events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		fw, fh := paneStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + 1 + qh + 1 // header, similarity, input line, status
		paneW := (msg.Width - sidebarWidth) / 2
		m.readyView.Width = max(20, paneW-fw)
		m.otherView.Width = m.readyView.Width
		m.readyView.Height = max(3, msg.Height-reserved-fh)
		m.otherView.Height = m.readyView.Height
		m.refresh()
		return m, nil
	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.comparison = msg.cmp
		m.status = fmt.Sprintf("Answers for %q", msg.cmp.Question)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.busy {
				m.busy = true
				m.status = "Asking both tiers..."
				m.input.SetValue("")
				return m, m.ask(q)
			}
		case "down":
			m.readyView.LineDown(1)
			m.otherView.LineDown(1)
			return m, nil
		case "up":
			m.readyView.LineUp(1)
			m.otherView.LineUp(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) refresh() {
	if m.comparison == nil {
		m.readyView.SetContent("No question yet.")
		m.otherView.SetContent("No question yet.")
		return
	}
	q := m.comparison.Question
	m.readyView.SetContent(renderTierAnswer(m.comparison.Ready, q))
	m.otherView.SetContent(renderTierAnswer(m.comparison.NotReady, q))
}

// View renders the TUI layout: both tier panes, the trust sidebar, the
// similarity verdict and the input line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("AI-Ready vs Non-AI-Ready")
	left := paneStyle.Render(readyTitle.Render("AI-ready") + "\n" + m.readyView.View())
	right := paneStyle.Render(otherTitle.Render("non-AI-ready") + "\n" + m.otherView.View())
	side := sidebarStyle.Render(renderSidebar(m.service.Summary(), m.service.Records(), m.thresholds))
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right, side)
	sim := ""
	if m.comparison != nil {
		sim = renderSimilarity(m.comparison.Similarity)
	}
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + body + "\n" + sim + "\n" + input + "\n" + status
}

func renderTierAnswer(ta service.TierAnswer, query string) string {
	if ta.Err != nil {
		return warnStyle.Render(fmt.Sprintf("No %s documents available.", ta.Readiness))
	}
	var b strings.Builder
	b.WriteString(highlightBestSentence(ta.Answer, query))
	b.WriteString("\n\nSources:\n")
	for _, src := range ta.Sources {
		if !src.Scored {
			fmt.Fprintf(&b, "- %s\n", src.Filename)
			continue
		}
		fmt.Fprintf(&b, "- %s %s trust %.2f\n", src.Filename, badgeStyle(src.Badge).Render("●"), src.Score)
	}
	return b.String()
}

func renderSimilarity(res *compare.Result) string {
	if res == nil {
		return ""
	}
	style := okStyle
	switch res.Verdict {
	case compare.Large:
		style = errStyle
	case compare.Moderate:
		style = warnStyle
	}
	return fmt.Sprintf("Response similarity %.2f  %s", res.Ratio, style.Render(res.Verdict.String()))
}

func renderSidebar(sum tier.Summary, records []domain.DocumentScore, th tier.Thresholds) string {
	const barWidth = 12
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("AI Trust Score Summary"))
	fmt.Fprintf(&b, "\nAvg trust score: %.2f\n", sum.Average)
	b.WriteString(badgeStyle(sum.Tier.String()).Render(tierLabel(sum.Tier)))
	fmt.Fprintf(&b, "\n%.2f+ High | %.2f+ Medium | below Low\n\n", th.High, th.Low)
	for _, r := range records {
		score := float64(r.AITrustScore)
		n := int(score*barWidth + 0.5)
		bar := badgeStyle(tier.Classify(score, th).String()).Render(strings.Repeat("█", n))
		fmt.Fprintf(&b, "%-14s %s %.2f\n", truncate(r.File, 14), bar+strings.Repeat(" ", barWidth-n), score)
	}
	return b.String()
}

func tierLabel(t tier.Tier) string {
	switch t {
	case tier.High:
		return "High Trust: AI-Ready Data"
	case tier.Medium:
		return "Medium Trust: Partially Usable"
	default:
		return "Low Trust: Not AI-Ready"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func badgeStyle(badge string) lipgloss.Style {
	switch badge {
	case "High":
		return okStyle
	case "Medium":
		return warnStyle
	case "Low":
		return errStyle
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	}
}

var (
	paneStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	sidebarStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1).Width(sidebarWidth - 4)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	readyTitle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	otherTitle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	okStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
