package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tgifai/thursday/internal/app"
)

var msgHwd = &MsgRunner{}

type MsgRunner struct{}

func (r *MsgRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "msg",
		Usage: "Send a one-off message through a configured channel",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "to",
				Usage: "Target as channelID:chatID, or a chat ID on the default channel",
			},
			&cli.StringFlag{
				Name:    "content",
				Aliases: []string{"m"},
				Usage:   "Message body (markdown)",
			},
			&cli.StringFlag{
				Name:  "image",
				Usage: "Image file to send after the text",
			},
		},
		Action: r.run,
	}
}

func (r *MsgRunner) run(ctx context.Context, cmd *cli.Command) error {
	to := strings.TrimSpace(cmd.String("to"))
	if to == "" {
		return errors.New("--to is required")
	}
	content := strings.TrimSpace(cmd.String("content"))
	image := strings.TrimSpace(cmd.String("image"))
	if content == "" && image == "" {
		return errors.New("--content or --image is required")
	}

	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		return fmt.Errorf("build runtime: %w", err)
	}
	defer func() { _ = a.Stop(context.Background()) }()

	rcpt, err := a.Router().Resolve(to)
	if err != nil {
		return err
	}

	if content != "" {
		if err := a.Router().SendText(ctx, to, content); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}
	if image != "" {
		if err := a.Router().SendImage(ctx, to, image); err != nil {
			return fmt.Errorf("send image: %w", err)
		}
	}

	fmt.Printf("Sent message via channel %s to target %s\n", rcpt.ChannelID, rcpt.ChatID)
	return nil
}
