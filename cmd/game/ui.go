package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/dm-engine/internal/services"
	"github.com/jwebster45206/dm-engine/internal/storage"
	"github.com/jwebster45206/dm-engine/pkg/engine"
	"github.com/jwebster45206/dm-engine/pkg/prompts"
	"github.com/jwebster45206/dm-engine/pkg/response"
	"github.com/jwebster45206/dm-engine/pkg/state"
)

const (
	AgentName       = "DM"
	PlaceHolderText = "What do you do?"
)

// GameUI is the BubbleTea model that runs the game loop.
// https://github.com/charmbracelet/bubbletea
type GameUI struct {
	gs           *state.GameState
	narrator     *services.Narrator
	store        storage.Storage
	memory       engine.MemorySink
	logger       *slog.Logger
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Confirmation gate state: a turn whose effects drain resources or
	// sour a relationship is held here until the player accepts it.
	showConfirmModal bool
	pendingAction    string
	pendingResponse  *response.Response
	pendingWarnings  []engine.Issue

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

// turnReadyMsg carries a validated, sanitized response ready to commit
// (or to hold for confirmation).
type turnReadyMsg struct {
	action       string
	resp         *response.Response
	warnings     []engine.Issue
	needsConfirm bool
}

type savedMsg struct {
	err error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	effectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")) // grey

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewGameUI(gs *state.GameState, narrator *services.Narrator, store storage.Storage, memory engine.MemorySink, logger *slog.Logger) GameUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return GameUI{
		gs:           gs,
		narrator:     narrator,
		store:        store,
		memory:       memory,
		logger:       logger,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		ready:        false,
	}
}

func (m *GameUI) writeInitialContent(chatWidth int) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("DM ENGINE") + "\n\n")
	content.WriteString("Describe your actions below and the DM will narrate the outcome.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	if loc, ok := m.gs.CurrentLocation(); ok {
		opening := fmt.Sprintf("%s\n\n%s", loc.Name, loc.Description)
		content.WriteString(formatNarration(opening, chatWidth) + "\n\n")
	}
	return content.String()
}

func (m *GameUI) writeMetadata() string {
	gs := m.gs
	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME STATE") + "\n\n")

	content.WriteString("Game ID:\n")
	content.WriteString(gs.ID.String()[:8] + "...\n\n")

	p := gs.Player
	content.WriteString(fmt.Sprintf("Turn: %d\n", gs.Turn))
	content.WriteString(fmt.Sprintf("Time: %s\n\n", gs.GameTime.Format("Mon 15:04")))
	content.WriteString(fmt.Sprintf("%s\n", p.Spec.Name))
	content.WriteString(fmt.Sprintf("HP: %d/%d\n", p.HP(), p.MaxHP()))
	content.WriteString(fmt.Sprintf("Gold: %d\n\n", p.Gold()))

	if loc, ok := gs.CurrentLocation(); ok {
		content.WriteString("Location:\n")
		content.WriteString(loc.Name + "\n\n")
	}

	if len(p.Spec.Inventory) > 0 {
		content.WriteString("Inventory:\n")
		items := make([]string, 0, len(p.Spec.Inventory))
		for id, qty := range p.Spec.Inventory {
			items = append(items, fmt.Sprintf("• %s x%d", id, qty))
		}
		sort.Strings(items)
		content.WriteString(strings.Join(items, "\n") + "\n\n")
	}

	openQuests := make([]string, 0, len(gs.ActiveQuests))
	for _, q := range gs.ActiveQuests {
		if !q.Completed {
			openQuests = append(openQuests, "• "+q.Title)
		}
	}
	if len(openQuests) > 0 {
		sort.Strings(openQuests)
		content.WriteString("Quests:\n")
		content.WriteString(strings.Join(openQuests, "\n") + "\n\n")
	}

	if len(gs.Relationships) > 0 {
		content.WriteString("Standing:\n")
		lines := make([]string, 0, len(gs.Relationships))
		for npcID, score := range gs.Relationships {
			lines = append(lines, fmt.Sprintf("• %s: %s", gs.NPCName(npcID), state.RelationshipBand(score)))
		}
		sort.Strings(lines)
		content.WriteString(strings.Join(lines, "\n") + "\n\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /save: Save game\n")
	content.WriteString("• /copy: Copy narration\n")

	return content.String()
}

// writeChatContent rebuilds the transcript from conversation history for
// the current viewport width.
func (m *GameUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	if len(m.gs.History) == 0 {
		m.chatViewport.SetContent(m.writeInitialContent(chatWidth))
		if m.loading {
			m.chatViewport.SetContent(m.writeInitialContent(chatWidth) + m.renderProgressBar())
		}
		return
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("DM ENGINE") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	for _, rec := range m.gs.History {
		content.WriteString(userStyle.Render("You: ") + wordwrap.String(rec.PlayerAction, max(chatWidth-6, 10)) + "\n\n")
		content.WriteString(formatNarration(rec.Narration, chatWidth) + "\n\n")
		for _, sp := range rec.Speeches {
			line := fmt.Sprintf("%s %s", speakerStyle.Render(m.gs.NPCName(sp.NPCID)+":"), sp.Text)
			content.WriteString(wordwrap.String(line, max(chatWidth, 10)) + "\n\n")
		}
		if len(rec.EffectLog) > 0 {
			content.WriteString(effectStyle.Render("["+strings.Join(rec.EffectLog, " | ")+"]") + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m GameUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m GameUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showConfirmModal {
		return m.updateConfirmModal(msg)
	}
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0
			m.writeChatContent()

			return m, tea.Batch(m.runTurn(input), progressTick())
		}

	case turnReadyMsg:
		m.loading = false
		if msg.needsConfirm {
			m.showConfirmModal = true
			m.pendingAction = msg.action
			m.pendingResponse = msg.resp
			m.pendingWarnings = msg.warnings
			return m, nil
		}
		return m.commitTurn(msg.action, msg.resp)

	case savedMsg:
		if msg.err != nil {
			m.err = msg.err
			currentContent := m.chatViewport.View()
			m.chatViewport.SetContent(currentContent + errorStyle.Render("Save failed: "+msg.err.Error()) + "\n\n")
			m.chatViewport.GotoBottom()
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// runTurn drives one full turn pipeline off the UI thread: prompt,
// model, parse, validate, sanitize. State is not touched here; the
// commit happens back on the Update loop.
func (m GameUI) runTurn(input string) tea.Cmd {
	gs := m.gs
	narrator := m.narrator
	logger := m.logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()

		system, user, err := prompts.New().
			WithState(gs).
			WithPlayerAction(input).
			Build()
		if err != nil {
			// Unreachable with non-empty input; fall back anyway.
			logger.Error("Prompt build failed", "error", err)
			return turnReadyMsg{action: input, resp: response.Fallback(input)}
		}

		resp := narrator.GenerateDMResponse(ctx, system, user, input)

		issues := engine.Validate(resp, gs)
		if !issues.Valid() {
			for _, issue := range issues {
				logger.Warn("Validation issue", "severity", issue.Severity.String(), "message", issue.Message)
			}
			engine.Sanitize(resp, gs, logger)
		}

		return turnReadyMsg{
			action:       input,
			resp:         resp,
			warnings:     issues.Warnings(),
			needsConfirm: needsConfirmation(resp.Effect, issues),
		}
	}
}

// needsConfirmation gates effects that cost the player something: lost
// gold or HP, or a soured relationship. Purely beneficial effects and
// clean responses commit without a prompt.
func needsConfirmation(effect *response.Effect, issues engine.Issues) bool {
	if len(issues.Warnings()) > 0 {
		return true
	}
	if effect == nil {
		return false
	}
	if effect.HPChange < 0 || effect.GoldChange < 0 {
		return true
	}
	for _, delta := range effect.RelationshipChanges {
		if delta < 0 {
			return true
		}
	}
	return false
}

// commitTurn mutates game state with the applicator and saves. Only
// committed turns advance the turn counter and enter history.
func (m GameUI) commitTurn(action string, resp *response.Response) (tea.Model, tea.Cmd) {
	m.gs.BeginTurn(action)

	applier := engine.NewApplier(m.gs, m.logger)
	if m.memory != nil {
		applier = applier.WithMemory(m.memory)
	}
	applier.Apply(resp.Effect, engine.TurnContext{
		PlayerAction: action,
		Narration:    resp.Narration,
		Speeches:     resp.Speeches,
		Timestamp:    resp.Timestamp,
	})

	m.writeChatContent()
	if len(resp.SuggestedOptions) > 0 {
		currentContent := m.chatViewport.View()
		suggestions := promptStyle.Render("Try: " + strings.Join(resp.SuggestedOptions, " · "))
		m.chatViewport.SetContent(currentContent + suggestions + "\n\n")
	}
	m.chatViewport.GotoBottom()
	m.metaViewport.SetContent(m.writeMetadata())

	return m, m.saveGame()
}

// declineTurn discards a pending response without touching state.
func (m GameUI) declineTurn() (tea.Model, tea.Cmd) {
	m.pendingResponse = nil
	m.pendingAction = ""
	m.pendingWarnings = nil

	currentContent := m.chatViewport.View()
	m.chatViewport.SetContent(currentContent + promptStyle.Render("You reconsider and hold back.") + "\n\n")
	m.chatViewport.GotoBottom()

	m.textarea.Focus()
	return m, textarea.Blink
}

func (m GameUI) saveGame() tea.Cmd {
	gs := m.gs
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return savedMsg{err: store.SaveGameState(ctx, gs.ID, gs)}
	}
}

func (m GameUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))
	m.textarea.Reset()

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• /save - Save the game now
• /copy - Copy the last narration to the clipboard
• Ctrl+C - Quit game

How to play:
• Type your actions and press Enter
• The DM narrates outcomes and updates the world
• Costly effects ask for confirmation before they apply
`
		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + titleStyle.Render("Help:") + helpText + "\n")
		m.chatViewport.GotoBottom()

	case "/save":
		return m, m.saveGame()

	case "/copy":
		currentContent := m.chatViewport.View()
		if m.gs.LastNarration == "" {
			m.chatViewport.SetContent(currentContent + promptStyle.Render("Nothing to copy yet.") + "\n\n")
		} else if err := clipboard.WriteAll(m.gs.LastNarration); err != nil {
			m.chatViewport.SetContent(currentContent + errorStyle.Render("Copy failed: "+err.Error()) + "\n\n")
		} else {
			m.chatViewport.SetContent(currentContent + promptStyle.Render("Narration copied to clipboard.") + "\n\n")
		}
		m.chatViewport.GotoBottom()

	case "/quit":
		m.showQuitModal = true
	}

	return m, nil
}

func (m GameUI) updateConfirmModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y", "enter":
			m.showConfirmModal = false
			action, resp := m.pendingAction, m.pendingResponse
			m.pendingAction, m.pendingResponse, m.pendingWarnings = "", nil, nil
			return m.commitTurn(action, resp)
		case "n", "N", "esc", "ctrl+c":
			m.showConfirmModal = false
			return m.declineTurn()
		}
	}
	return m, nil
}

func (m GameUI) renderConfirmModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Accept This Outcome?"))
	content.WriteString("\n\n")

	if effect := m.pendingResponse.Effect; effect != nil {
		if effect.HPChange != 0 {
			content.WriteString(fmt.Sprintf("HP change: %+d\n", effect.HPChange))
		}
		if effect.GoldChange != 0 {
			content.WriteString(fmt.Sprintf("Gold change: %+d\n", effect.GoldChange))
		}
		for _, item := range effect.NewItems {
			content.WriteString(fmt.Sprintf("Gain item: %s\n", item))
		}
		for npcID, delta := range effect.RelationshipChanges {
			content.WriteString(fmt.Sprintf("Standing with %s: %+.1f\n", m.gs.NPCName(npcID), delta))
		}
	}

	if len(m.pendingWarnings) > 0 {
		content.WriteString("\n")
		for _, w := range m.pendingWarnings {
			content.WriteString(warningStyle.Render("⚠ "+w.Message) + "\n")
		}
	}

	content.WriteString("\n")
	content.WriteString(promptStyle.Render("Press Y to accept, N to decline"))

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m GameUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}
	return m, nil
}

func (m GameUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Your progress is saved after every turn.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m GameUI) View() string {
	if m.showConfirmModal {
		return m.renderConfirmModal()
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

func formatNarration(text string, width int) string {
	prefix := AgentName + ": "
	wrapped := wordwrap.String(text, max(width-len(prefix), 10))
	return narratorStyle.Render(prefix) + wrapped
}

// renderProgressBar creates an animated progress bar for loading states
func (m GameUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
