package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dvila/faro/internal/agent"
	"github.com/dvila/faro/internal/prompts"
	"github.com/dvila/faro/internal/retry"
)

// handleTimeout bounds one inbound message end to end, agent loop and
// response sends included.
const handleTimeout = 5 * time.Minute

// maxDocumentBytes is what Telegram lets bots download.
const maxDocumentBytes = 20 << 20

// AgentRunner abstracts the agent loop for testability. The real
// implementation is *agent.Agent.
type AgentRunner interface {
	ProcessTurn(ctx context.Context, req agent.Request) (*agent.Response, error)
}

// Transcriber turns a voice note into text. The real implementation is
// *transcribe.Client.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
}

// DocumentSaver stores an uploaded document. The real implementation
// is *notion.Client.
type DocumentSaver interface {
	SaveDocument(ctx context.Context, title, content string, tags []string, source string) error
}

// BridgeConfig holds the dependencies for a Bridge. Transcriber and
// Documents are optional; the matching attachment types get a polite
// refusal when missing.
type BridgeConfig struct {
	Client      *Client
	Runner      AgentRunner
	Transcriber Transcriber
	Documents   DocumentSaver
	Logger      *slog.Logger

	// SendRetry is wrapped around sendMessage calls, which hit
	// Telegram's own rate limits on long answers.
	SendRetry retry.Policy
}

// Bridge receives Telegram updates, routes them through the agent loop
// and sends answers back.
type Bridge struct {
	client      *Client
	runner      AgentRunner
	transcriber Transcriber
	documents   DocumentSaver
	logger      *slog.Logger
	sendRetry   retry.Policy
}

// NewBridge creates a Telegram message bridge.
func NewBridge(cfg BridgeConfig) *Bridge {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		client:      cfg.Client,
		runner:      cfg.Runner,
		transcriber: cfg.Transcriber,
		documents:   cfg.Documents,
		logger:      logger.With("component", "bridge"),
		sendRetry:   cfg.SendRetry,
	}
}

// Start long-polls for updates and dispatches them until ctx is
// cancelled. Poll failures back off briefly instead of spinning.
func (b *Bridge) Start(ctx context.Context) {
	b.logger.Info("telegram bridge started")

	if err := b.client.DeleteWebhook(ctx); err != nil {
		b.logger.Warn("webhook cleanup failed", "error", err)
	}

	var offset int64
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("telegram bridge shutting down")
			return
		default:
		}

		updates, err := b.client.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Warn("getUpdates failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, upd := range updates {
			offset = upd.UpdateID + 1
			if upd.Message == nil {
				continue
			}
			b.handleUpdate(ctx, upd.Message)
		}
	}
}

func (b *Bridge) handleUpdate(ctx context.Context, msg *Message) {
	ctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	switch {
	case msg.Voice != nil:
		b.handleVoice(ctx, msg)
	case msg.Document != nil:
		b.handleDocument(ctx, msg)
	case strings.HasPrefix(msg.Text, "/"):
		b.handleCommand(ctx, msg)
	case msg.Text != "":
		b.processText(ctx, msg.Chat.ID, msg.Text)
	}
}

func (b *Bridge) handleCommand(ctx context.Context, msg *Message) {
	command := msg.Text
	if i := strings.IndexByte(command, ' '); i > 0 {
		command = command[:i]
	}
	// Commands in groups arrive as /cmd@botname.
	if i := strings.IndexByte(command, '@'); i > 0 {
		command = command[:i]
	}

	switch command {
	case "/start":
		b.send(ctx, msg.Chat.ID, startMessage)

	case "/myid":
		b.send(ctx, msg.Chat.ID, fmt.Sprintf(
			"Tu Chat ID es: %d\n\n"+
				"Añade telegram.chat_id a la configuración para activar los mensajes automáticos:\n"+
				"chat_id: \"%d\"", msg.Chat.ID, msg.Chat.ID))

	case "/briefing":
		b.RunBriefing(ctx, msg.Chat.ID, prompts.DailyBriefing, prompts.ManualBriefingHeader)

	case "/resumen":
		b.RunBriefing(ctx, msg.Chat.ID, prompts.WeeklySummary, prompts.ManualWeeklyHeader)

	case "/olvidar":
		if clearer, ok := b.runner.(interface{ ClearSession(string) }); ok {
			clearer.ClearSession(sessionKey(msg.Chat.ID))
			b.send(ctx, msg.Chat.ID, "🧹 Conversación olvidada. Empezamos de cero.")
		}

	default:
		b.send(ctx, msg.Chat.ID, "No conozco ese comando. Prueba /start, /briefing, /resumen o /myid.")
	}
}

const startMessage = "👋 Hola, soy tu agente de productividad personal.\n\n" +
	"Puedo ayudarte a:\n" +
	"• 📋 Gestionar tareas en Notion\n" +
	"• 📅 Ver y bloquear tiempo en el calendario\n" +
	"• 📧 Leer y analizar tus correos\n" +
	"• 📝 Guardar notas de reuniones\n" +
	"• 🗓️ Generar tu agenda del día\n" +
	"• 🎤 Mandarme audios de voz\n" +
	"• 🔍 Buscar noticias e información en internet\n\n" +
	"Comandos disponibles:\n" +
	"• /briefing — briefing diario ahora\n" +
	"• /resumen — resumen semanal ahora\n" +
	"• /myid — ver tu Chat ID\n\n" +
	"¿En qué te ayudo?"

// processText runs one text message through the agent and sends the
// answer back, split to Telegram's message limit.
func (b *Bridge) processText(ctx context.Context, chatID int64, text string) {
	if err := b.client.SendChatAction(ctx, chatID, "typing"); err != nil {
		b.logger.Debug("chat action failed", "error", err)
	}

	resp, err := b.runner.ProcessTurn(ctx, agent.Request{
		SessionKey: sessionKey(chatID),
		Text:       text,
	})
	if err != nil {
		b.logger.Error("agent turn failed", "chat_id", chatID, "error", err)
		b.send(ctx, chatID, fmt.Sprintf("⚠️ Error: %v", err))
		return
	}
	if resp.Text == "" {
		return
	}
	b.sendLong(ctx, chatID, resp.Text)
}

func (b *Bridge) handleVoice(ctx context.Context, msg *Message) {
	chatID := msg.Chat.ID
	if b.transcriber == nil {
		b.send(ctx, chatID, "⚠️ La transcripción de voz no está configurada. No puedo procesar audios.")
		return
	}

	if err := b.client.SendChatAction(ctx, chatID, "typing"); err != nil {
		b.logger.Debug("chat action failed", "error", err)
	}

	audio, err := b.client.DownloadFile(ctx, msg.Voice.FileID)
	if err != nil {
		b.logger.Error("voice download failed", "chat_id", chatID, "error", err)
		b.send(ctx, chatID, fmt.Sprintf("⚠️ Error transcribiendo audio: %v", err))
		return
	}

	text, err := b.transcriber.Transcribe(ctx, "audio.ogg", audio)
	if err != nil {
		b.logger.Error("transcription failed", "chat_id", chatID, "error", err)
		b.send(ctx, chatID, fmt.Sprintf("⚠️ Error transcribiendo audio: %v", err))
		return
	}
	if text == "" {
		b.send(ctx, chatID, "⚠️ No pude entender el audio.")
		return
	}

	// Echo the transcription so the user can see what was understood.
	if err := b.client.SendMessage(ctx, chatID, "🎤 <i>"+text+"</i>", "HTML"); err != nil {
		b.logger.Debug("transcription echo failed", "error", err)
	}
	b.processText(ctx, chatID, text)
}

func (b *Bridge) handleDocument(ctx context.Context, msg *Message) {
	chatID := msg.Chat.ID
	doc := msg.Document

	if b.documents == nil {
		b.send(ctx, chatID, "⚠️ El guardado de documentos no está configurado.")
		return
	}
	if doc.FileSize > maxDocumentBytes {
		b.send(ctx, chatID, "⚠️ El archivo es demasiado grande (máx. 20MB). "+
			"Prueba a dividirlo en partes más pequeñas.")
		return
	}
	if !strings.HasPrefix(doc.MimeType, "text/") {
		b.send(ctx, chatID, fmt.Sprintf(
			"⚠️ Formato no soportado (%s). Envíame un archivo de texto.", doc.MimeType))
		return
	}

	if err := b.client.SendChatAction(ctx, chatID, "upload_document"); err != nil {
		b.logger.Debug("chat action failed", "error", err)
	}

	data, err := b.client.DownloadFile(ctx, doc.FileID)
	if err != nil {
		b.logger.Error("document download failed", "chat_id", chatID, "error", err)
		b.send(ctx, chatID, fmt.Sprintf("⚠️ Error procesando el archivo: %v", err))
		return
	}

	title := doc.FileName
	if title == "" {
		title = "Documento sin nombre"
	}
	if i := strings.LastIndexByte(title, '.'); i > 0 {
		title = title[:i]
	}

	if err := b.documents.SaveDocument(ctx, title, string(data), nil, "Manual"); err != nil {
		b.logger.Error("document save failed", "chat_id", chatID, "error", err)
		b.send(ctx, chatID, fmt.Sprintf("⚠️ Error procesando el archivo: %v", err))
		return
	}
	b.send(ctx, chatID, fmt.Sprintf(
		"📄 Documento '%s' guardado en Notion.\n\nPuedes pedirme que lo busque o lo resuma cuando quieras.", title))
}

// RunBriefing runs a scheduled or manual briefing: header first, then
// an ephemeral agent turn whose answer goes to the chat.
func (b *Bridge) RunBriefing(ctx context.Context, chatID int64, prompt, header string) {
	b.send(ctx, chatID, header)
	if err := b.client.SendChatAction(ctx, chatID, "typing"); err != nil {
		b.logger.Debug("chat action failed", "error", err)
	}

	resp, err := b.runner.ProcessTurn(ctx, agent.Request{Text: prompt, Ephemeral: true})
	if err != nil {
		b.logger.Error("briefing failed", "chat_id", chatID, "error", err)
		b.send(ctx, chatID, fmt.Sprintf("⚠️ Error generando briefing: %v", err))
		return
	}
	b.sendLong(ctx, chatID, resp.Text)
}

// sendLong renders markdown to Telegram HTML and sends it in chunks.
// A rejected HTML chunk falls back to plain text so formatting issues
// never swallow an answer.
func (b *Bridge) sendLong(ctx context.Context, chatID int64, text string) {
	rendered := RenderHTML(text)
	for i, chunk := range Split(rendered, MessageLimit) {
		chunk := chunk
		// Split keeps break whitespace, which can leave a chunk with
		// nothing visible in it. Telegram rejects empty messages.
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		err := b.sendRetry.Do(ctx, func(ctx context.Context) error {
			return b.client.SendMessage(ctx, chatID, chunk, "HTML")
		})
		if err != nil {
			b.logger.Warn("HTML send failed, falling back to plain text",
				"chat_id", chatID, "chunk", i, "error", err)
			b.send(ctx, chatID, chunk)
		}
	}
}

func (b *Bridge) send(ctx context.Context, chatID int64, text string) {
	err := b.sendRetry.Do(ctx, func(ctx context.Context) error {
		return b.client.SendMessage(ctx, chatID, text, "")
	})
	if err != nil {
		b.logger.Error("send failed", "chat_id", chatID, "error", err)
	}
}

func sessionKey(chatID int64) string {
	return "telegram-" + strconv.FormatInt(chatID, 10)
}
