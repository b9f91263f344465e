package folio

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// notFound is returned as the JSON body of a lookup miss.
type notFound struct {
	Error string `json:"error"`
	Slug  string `json:"slug,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

type postResponse struct {
	PostDetail
	JSONLD string `json:"jsonLd"`
}

type tagResponse struct {
	Tag   string        `json:"tag"`
	Count int           `json:"count"`
	Posts []PostSummary `json:"posts"`
}

type searchResponse struct {
	Query string        `json:"query"`
	Posts []PostSummary `json:"posts"`
}

type healthResponse struct {
	Status   string   `json:"status"`
	Posts    int      `json:"posts"`
	Tags     int      `json:"tags"`
	Problems []string `json:"problems"`
	BuiltAt  string   `json:"builtAt"`
}

func (a *App) handleListPosts(c echo.Context) error {
	idx, err := a.Cache.Index()
	if err != nil {
		return err
	}
	if tag := c.QueryParam("tag"); tag != "" {
		return c.JSON(http.StatusOK, summarize(idx.ByTag(tag)))
	}
	return c.JSON(http.StatusOK, idx.Summaries())
}

func (a *App) handleGetPost(c echo.Context) error {
	idx, err := a.Cache.Index()
	if err != nil {
		return err
	}
	slug := c.Param("slug")
	detail, err := idx.Detail(slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, notFound{Error: "post not found", Slug: slug})
		}
		return err
	}
	return c.JSON(http.StatusOK, postResponse{
		PostDetail: detail,
		JSONLD:     BlogPostingJsonLD(detail.Post, a.Config),
	})
}

func (a *App) handleRelated(c echo.Context) error {
	idx, err := a.Cache.Index()
	if err != nil {
		return err
	}
	slug := c.Param("slug")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	related, err := idx.Related(slug, limit)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, notFound{Error: "post not found", Slug: slug})
		}
		return err
	}
	return c.JSON(http.StatusOK, summarize(related))
}

func (a *App) handleListTags(c echo.Context) error {
	idx, err := a.Cache.Index()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, idx.Tags())
}

func (a *App) handlePostsByTag(c echo.Context) error {
	idx, err := a.Cache.Index()
	if err != nil {
		return err
	}
	tag := c.Param("tag")
	if !idx.HasTag(tag) {
		return c.JSON(http.StatusNotFound, notFound{Error: "tag not found", Tag: tag})
	}
	posts := idx.ByTag(tag)
	return c.JSON(http.StatusOK, tagResponse{Tag: tag, Count: len(posts), Posts: summarize(posts)})
}

func (a *App) handleSearch(c echo.Context) error {
	idx, err := a.Cache.Index()
	if err != nil {
		return err
	}
	q := c.QueryParam("q")
	return c.JSON(http.StatusOK, searchResponse{Query: q, Posts: summarize(idx.Search(q))})
}

// handlePostContent serves the rendered body of a post as an HTML fragment.
func (a *App) handlePostContent(c echo.Context) error {
	idx, err := a.Cache.Index()
	if err != nil {
		return err
	}
	post, err := idx.BySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return err
	}
	return Render(c, PostContent(post))
}

func (a *App) handleHealth(c echo.Context) error {
	idx, err := a.Cache.Index()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "error", "error": err.Error()})
	}
	problems := make([]string, 0, len(idx.problems))
	for _, p := range idx.problems {
		problems = append(problems, p.Error())
	}
	status := "ok"
	if len(problems) > 0 {
		status = "degraded"
	}
	return c.JSON(http.StatusOK, healthResponse{
		Status:   status,
		Posts:    idx.Len(),
		Tags:     len(idx.tags),
		Problems: problems,
		BuiltAt:  idx.BuiltAt().Format(time.RFC3339),
	})
}

func (a *App) handleSitemap(c echo.Context) error {
	idx, err := a.Cache.Index()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, idx.posts)
}

func (a *App) handleFeed(c echo.Context) error {
	idx, err := a.Cache.Index()
	if err != nil {
		return err
	}
	return a.renderRSS(c, idx.posts)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	code := http.StatusInternalServerError
	if errors.As(err, &he) {
		code = he.Code
	}
	if code >= 500 {
		slog.Error("Server error", slog.String("uri", c.Request().RequestURI), slog.String("error", err.Error()))
		_ = c.JSON(code, map[string]string{"error": http.StatusText(code)})
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
