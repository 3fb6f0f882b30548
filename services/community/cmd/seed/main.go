package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"hobbyhub/pkg/cache"
	"hobbyhub/pkg/config"
	"hobbyhub/pkg/database"
	"hobbyhub/pkg/logger"
	"hobbyhub/pkg/s3"
	"hobbyhub/pkg/session"
	"hobbyhub/services/community/internal/entity"
	postCache "hobbyhub/services/community/internal/repo/cache"
	"hobbyhub/services/community/internal/repo/persistent"
	"hobbyhub/services/community/internal/usecase"

	"github.com/google/uuid"
)

type seedPost struct {
	title    string
	content  string
	postType entity.PostType
	comments []string
}

var seedPosts = []seedPost{
	{
		title:    "How often should I water a juniper bonsai?",
		content:  "Mine is two years old and the tips are turning yellow.",
		postType: entity.PostTypeQuestion,
		comments: []string{"Only when the top of the soil is dry.", "Check the drainage too!"},
	},
	{
		title:    "Film photography is better for learning composition",
		content:  "Having 36 shots makes you think before pressing the shutter.",
		postType: entity.PostTypeOpinion,
		comments: []string{"Digital with a self-imposed limit works just as well."},
	},
	{
		title:    "Share your latest sourdough bake",
		content:  "Post a picture of your crumb and your hydration percentage.",
		postType: entity.PostTypeDiscussion,
		comments: []string{"75% hydration, 18h cold retard.", "First loaf that didn't come out flat!", "What flour do you use?"},
	},
	{
		title:    "Which starter kit for watercolor?",
		postType: entity.PostTypeQuestion,
	},
}

func main() {
	var imageURL string
	flag.StringVar(&imageURL, "image-url", "", "Optional URL of a jpg/png/gif to attach to seeded discussion posts")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create S3 client: %v", err)
		panic(err)
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		panic(err)
	}

	postRepo := persistent.NewPostRepository(db)
	images := usecase.NewImageStager(s3Client, cfg.MaxImageBytes)
	posts := usecase.NewPostUseCase(postRepo, postCache.NewPostCache(redisClient), images, nil, log)
	comments := usecase.NewCommentUseCase(postRepo, persistent.NewCommentRepository(db), nil, log)

	s := &seeder{
		posts:      posts,
		comments:   comments,
		images:     images,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
	if err := s.seed(context.Background(), imageURL); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

type seeder struct {
	posts      usecase.PostUseCase
	comments   usecase.CommentUseCase
	images     *usecase.ImageStager
	httpClient *http.Client
	log        *logger.Logger
}

// seed creates the sample posts that do not exist yet, each by its own
// anonymous user, and comments on them from other users.
func (s *seeder) seed(ctx context.Context, imageURL string) error {
	for i, sp := range seedPosts {
		existing, err := s.posts.ListPosts(ctx, entity.PostFilter{Search: sp.title})
		if err != nil {
			return fmt.Errorf("failed to check existing posts: %w", err)
		}
		if containsTitle(existing, sp.title) {
			s.log.Info("Post %q already exists, skipping", sp.title)
			continue
		}

		authorCtx := asNewUser(ctx)

		var image *usecase.StagedFile
		if imageURL != "" && sp.postType == entity.PostTypeDiscussion {
			image, err = s.fetchImage(imageURL)
			if err != nil {
				s.log.Warn("Failed to fetch seed image: %v (creating post without it)", err)
			}
		}

		post, err := s.posts.SubmitDraft(authorCtx, usecase.NewDraft(entity.CreatePostInput{
			Title:   sp.title,
			Content: sp.content,
			Type:    string(sp.postType),
		}, image))
		if err != nil {
			return fmt.Errorf("failed to create post %d: %w", i+1, err)
		}
		s.log.Info("Created post: %s (%s)", post.Title, post.Type.Label())

		for _, content := range sp.comments {
			if _, err := s.comments.AddComment(asNewUser(ctx), post.ID, content); err != nil {
				return fmt.Errorf("failed to comment on post %s: %w", post.ID, err)
			}
		}

		for vote := 0; vote < len(sp.comments); vote++ {
			if _, err := s.posts.IncrementUpvote(ctx, post.ID, vote); err != nil {
				return fmt.Errorf("failed to upvote post %s: %w", post.ID, err)
			}
		}
	}
	return nil
}

func (s *seeder) fetchImage(url string) (*usecase.StagedFile, error) {
	s.log.Info("Fetching seed image from %s", url)
	resp, err := s.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("image source returned status %d", resp.StatusCode)
	}

	name := path.Base(resp.Request.URL.Path)
	return s.images.StageFile(name, resp.Header.Get("Content-Type"), resp.Body)
}

func asNewUser(ctx context.Context) context.Context {
	return session.WithSession(ctx, session.Session{UserID: uuid.New().String(), Theme: session.ThemeLight})
}

func containsTitle(posts []*entity.Post, title string) bool {
	for _, p := range posts {
		if p.Title == title {
			return true
		}
	}
	return false
}
