package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/grokrpc/grok-go/runtime/model"
	"github.com/grokrpc/grok-go/runtime/stream"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	var system string
	cmd := &cobra.Command{
		Use:   "chat <prompt>",
		Short: "Send a chat completion and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, release, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			resp, err := client.Chat(cmd.Context(), chatRequest(system, args))
			if err != nil {
				return err
			}
			printResponse(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&system, "system", "", "System prompt")
	return cmd
}

func newStreamCmd(opts *rootOptions) *cobra.Command {
	var system string
	cmd := &cobra.Command{
		Use:   "stream <prompt>",
		Short: "Stream a chat completion as it is generated",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, release, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			s, err := client.StreamChat(cmd.Context(), chatRequest(system, args))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			resp, err := stream.Drain(s, func(d stream.Delta) {
				fmt.Fprint(out, d.Text)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			printUsage(out, resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&system, "system", "", "System prompt")
	return cmd
}

func newDeferredCmd(opts *rootOptions) *cobra.Command {
	var interval, timeout time.Duration
	cmd := &cobra.Command{
		Use:   "deferred <prompt>",
		Short: "Run a chat completion in the background and wait for it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, release, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			handle, err := client.StartDeferred(cmd.Context(), chatRequest("", args))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "request %s submitted\n", handle.RequestID)
			resp, err := client.WaitForDeferred(cmd.Context(), handle, interval, timeout)
			if err != nil {
				return err
			}
			printResponse(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Poll interval (default: configured interval)")
	cmd.Flags().DurationVar(&timeout, "wait", 0, "Maximum wait (default: configured timeout)")
	return cmd
}

func newModelsCmd(opts *rootOptions) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "models [name]",
		Short: "List models or show one model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, release, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			switch kind {
			case "language":
				if len(args) == 1 {
					m, err := client.GetLanguageModel(ctx, args[0])
					if err != nil {
						return err
					}
					printLanguageModel(out, m)
					return nil
				}
				ms, err := client.ListLanguageModels(ctx)
				if err != nil {
					return err
				}
				for _, m := range ms {
					printLanguageModel(out, m)
				}
			case "embedding":
				if len(args) == 1 {
					m, err := client.GetEmbeddingModel(ctx, args[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s\t%s\n", m.Name, strings.Join(m.Aliases, ","))
					return nil
				}
				ms, err := client.ListEmbeddingModels(ctx)
				if err != nil {
					return err
				}
				for _, m := range ms {
					fmt.Fprintf(out, "%s\t%s\n", m.Name, strings.Join(m.Aliases, ","))
				}
			case "image":
				if len(args) == 1 {
					m, err := client.GetImageGenerationModel(ctx, args[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s\t%s\n", m.Name, strings.Join(m.Aliases, ","))
					return nil
				}
				ms, err := client.ListImageGenerationModels(ctx)
				if err != nil {
					return err
				}
				for _, m := range ms {
					fmt.Fprintf(out, "%s\t%s\n", m.Name, strings.Join(m.Aliases, ","))
				}
			default:
				return fmt.Errorf("unsupported model kind %q (use language, embedding or image)", kind)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "language", "Model kind: language, embedding, image")
	return cmd
}

func newKeyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "key",
		Short: "Show API key metadata and check connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, release, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			info, err := client.GetAPIKeyInfo(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "key:    %s\n", info.RedactedAPIKey)
			fmt.Fprintf(out, "name:   %s\n", info.Name)
			fmt.Fprintf(out, "team:   %s\n", info.TeamID)
			fmt.Fprintf(out, "status: %s\n", info.Status())
			if len(info.ACLs) > 0 {
				fmt.Fprintf(out, "acls:   %s\n", strings.Join(info.ACLs, ", "))
			}
			return nil
		},
	}
}

func newTokenizeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tokenize <text>",
		Short: "Tokenize text with the model's tokenizer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, release, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			resp, err := client.Tokenize(cmd.Context(), &model.TokenizeRequest{Text: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, tok := range resp.Tokens {
				fmt.Fprintf(out, "%d\t%q\n", tok.ID, tok.String)
			}
			fmt.Fprintf(out, "%d tokens (%s)\n", resp.TokenCount(), resp.Model)
			return nil
		},
	}
}

func newEmbedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "embed <text>...",
		Short: "Print embedding dimensions for each input",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, release, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			req := model.NewEmbedRequest(opts.model)
			for _, a := range args {
				req.AddText(a)
			}
			resp, err := client.Embed(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range resp.Embeddings {
				fmt.Fprintf(out, "%d\t%d dimensions\n", e.Index, len(e.Vector))
			}
			return nil
		},
	}
}

func chatRequest(system string, args []string) *model.ChatRequest {
	req := model.NewChatRequest()
	if system != "" {
		req.SystemMessage(system)
	}
	return req.UserMessage(strings.Join(args, " "))
}

func printResponse(w io.Writer, resp *model.ChatResponse) {
	fmt.Fprintln(w, resp.Content)
	for _, tc := range resp.ToolCalls {
		fmt.Fprintf(w, "tool call %s: %s(%s)\n", tc.ID, tc.Function.Name, tc.Function.Arguments)
	}
	printUsage(w, resp)
}

func printUsage(w io.Writer, resp *model.ChatResponse) {
	if resp == nil || resp.Usage.IsZero() {
		return
	}
	u := resp.Usage
	fmt.Fprintf(w, "[%s, %s: %d prompt + %d completion = %d tokens]\n",
		resp.Model, resp.FinishReason, u.PromptTokens, u.CompletionTokens, u.TotalTokens)
}

func printLanguageModel(w io.Writer, m *model.LanguageModel) {
	fmt.Fprintf(w, "%s\t%s\tmax prompt %d\n", m.Name, strings.Join(m.Aliases, ","), m.MaxPromptLength)
}
