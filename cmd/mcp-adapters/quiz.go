package main

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/mcp-adapters/internal/grader"
	"github.com/felixgeelhaar/mcp-adapters/internal/imagefetch"
	"github.com/felixgeelhaar/mcp-adapters/internal/quiz"
	"github.com/felixgeelhaar/mcp-adapters/internal/quizserver"
)

func newQuizCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quiz",
		Short: "Serve the question bank and answer grading tools",
		Long: `Serve get-random-question, get-question-by-id, submit-answer,
get-answering-suggestions, get-database-stats and show-current-question, plus
the question://{id} resource. Grading uses the backend named by LLM_PROVIDER
(zhipu, openai, ollama or anthropic).`,
		Args: cobra.NoArgs,
		RunE: runQuiz,
	}
}

func runQuiz(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	evaluator := grader.New(cfg.LLM, grader.WithLogger(logger.Named("grader")))
	srv := quizserver.New(quiz.NewStore(quiz.Seed()), evaluator,
		quizserver.WithImages(imagefetch.New()),
		quizserver.WithLogger(logger.Named("quiz")))
	return serve(cmd, srv, cfg, logger)
}
