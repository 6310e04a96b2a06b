package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"aichat/internal/app"
	"aichat/internal/tui"
)

const version = "1.0.0"

func newApplication() (*app.Application, error) {
	cfg, err := app.LoadConfig(app.DefaultConfigPath())
	if err != nil {
		return nil, err
	}
	var logOut io.Writer = io.Discard
	if cfg.Debug {
		logOut = os.Stderr
	}
	return app.NewApplication(cfg, app.NewLogger(logOut))
}

func main() {
	root := &cobra.Command{
		Use:     "aichat",
		Short:   "Terminal client for the assistant backend",
		Long:    "aichat is a terminal client for the assistant backend: login, AI chat with on-device conversation resume, chat history, and document upload.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			p := tea.NewProgram(tui.NewModel(a), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	root.AddCommand(
		loginCmd(),
		logoutCmd(),
		sendCmd(),
		chatsCmd(),
		openCmd(),
		newChatCmd(),
		uploadCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loginCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the credential on device",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			if user == "" {
				fmt.Print("usuário: ")
				if _, err := fmt.Scanln(&user); err != nil {
					return err
				}
			}
			fmt.Print("senha: ")
			raw, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return err
			}

			if err := a.Login(context.Background(), user, string(raw)); err != nil {
				return err
			}
			fmt.Println("Autenticado.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "account user name")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Logout(context.Background()); err != nil {
				return err
			}
			fmt.Println("Sessão encerrada.")
			return nil
		},
	}
}

func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <message>",
		Short: "Send one message to the active conversation and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.Send(context.Background(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(resp.Conteudo)
			for _, q := range resp.PerguntasRapidas {
				if q.Pergunta != "" {
					fmt.Println("  ·", q.Pergunta)
				}
			}
			return nil
		},
	}
}

func chatsCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "chats",
		Short: "List your chat history",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.ChatList(context.Background(), force)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("Você ainda não tem chats.")
				return nil
			}
			for _, item := range items {
				emoji := item.Emoji
				if emoji == "" {
					emoji = "💬"
				}
				title := item.Titulo
				if title == "" {
					title = fmt.Sprintf("Chat #%d", item.IDChat)
				}
				fmt.Printf("%6d  %s %s\n", item.IDChat, emoji, title)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "refresh", "r", false, "bypass the device cache")
	return cmd
}

func openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <id>",
		Short: "Load a historical chat into the active slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid chat id %q", args[0])
			}
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			state, err := a.OpenChat(context.Background(), id)
			if err != nil {
				return err
			}
			if state.Title != "" {
				fmt.Println(state.Title)
			}
			for _, msg := range state.Messages {
				who := "assistente"
				if msg.IsUser {
					who = "você"
				}
				fmt.Printf("%s: %s\n", who, msg.Text)
			}
			return nil
		},
	}
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "End the active conversation and start fresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.StartNewChat(context.Background()); err != nil {
				return err
			}
			fmt.Println("Novo chat iniciado.")
			return nil
		},
	}
}

func uploadCmd() *cobra.Command {
	var observation string
	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Send a file for analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.Upload(context.Background(), args[0], observation)
			if err != nil {
				return err
			}
			fmt.Printf("Arquivo #%d enviado.\n", resp.IDFile)
			if resp.AIOverview != "" {
				fmt.Println(resp.AIOverview)
			}
			if resp.IDChat != nil {
				fmt.Printf("Chat aberto: %d (use 'aichat' para conversar)\n", *resp.IDChat)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&observation, "observation", "o", "", "note sent with the file")
	return cmd
}
