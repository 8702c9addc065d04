package dispatch

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"boombot/pkg/enroll"
	"boombot/pkg/reply"
)

const (
	msgAck           = "Check your DMs to get started with BoomBot!"
	msgActiveSession = "You already have an enrollment in progress. Finish or cancel it first."
	msgDMClosed      = "BoomBot couldn't DM you. Allow direct messages from server members and try again."
	msgUnknown       = "not implemented"
)

type handlerFunc func(s *discordgo.Session, i *discordgo.InteractionCreate)

// Dispatcher maps slash-command names to handlers through a closed
// table built at construction; unknown names get an ephemeral
// "not implemented", matching the bot's original behavior.
type Dispatcher struct {
	handlers map[string]handlerFunc
	orch     *enroll.Orchestrator
	dm       *reply.Discord
	logger   *slog.Logger
}

func New(orch *enroll.Orchestrator, dm *reply.Discord, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		orch:   orch,
		dm:     dm,
		logger: logger,
	}
	d.handlers = map[string]handlerFunc{
		"register": d.handleRegister,
	}
	return d
}

// Handles reports whether a command name has a handler in the table.
func (d *Dispatcher) Handles(name string) bool {
	_, ok := d.handlers[name]
	return ok
}

// Commands returns the slash-command definitions to register per guild.
func (d *Dispatcher) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "register",
			Description: "Register yourself with BoomBot to be able to receive Valorant shop notifications",
		},
	}
}

// RegisterCommands creates the slash commands in every guild the bot
// is in, the way the original registered them on cache-ready.
func (d *Dispatcher) RegisterCommands(s *discordgo.Session, appID string) {
	for _, guild := range s.State.Guilds {
		for _, cmd := range d.Commands() {
			if _, err := s.ApplicationCommandCreate(appID, guild.ID, cmd); err != nil {
				d.logger.Error("command registration", "guild", guild.ID, "command", cmd.Name, "error", err)
				continue
			}
			d.logger.Info("command registered", "guild", guild.ID, "command", cmd.Name)
		}
	}
}

// HandleInteraction is the gateway entrypoint for slash commands.
func (d *Dispatcher) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	handler, ok := d.handlers[name]
	if !ok {
		d.ephemeral(s, i, msgUnknown)
		return
	}
	handler(s, i)
}

func (d *Dispatcher) handleRegister(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := InteractionUserID(i)
	if userID == "" {
		d.ephemeral(s, i, msgDMClosed)
		return
	}

	channelID, err := d.dm.OpenDM(userID)
	if err != nil {
		d.logger.Error("register", "user", userID, "error", err)
		d.ephemeral(s, i, msgDMClosed)
		return
	}

	// Claim the registry slot before acknowledging so a concurrent
	// invocation is rejected without opening a second conversation.
	sess, err := d.orch.Begin(userID, channelID)
	if err != nil {
		if errors.Is(err, enroll.ErrSessionActive) {
			d.ephemeral(s, i, msgActiveSession)
			return
		}
		d.logger.Error("register", "user", userID, "error", err)
		d.ephemeral(s, i, msgDMClosed)
		return
	}

	d.ephemeral(s, i, msgAck)

	go d.orch.Run(context.Background(), sess)
}

// InteractionUserID resolves the invoking user for both guild and DM
// invocations.
func InteractionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func (d *Dispatcher) ephemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		d.logger.Error("interaction response", "error", err)
	}
}
