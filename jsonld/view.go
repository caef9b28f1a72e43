package jsonld

import "github.com/aktagon/ldcard/identity"

// ArticleView is the projection of a linked Article used to build a card.
// It is built once by Extract and never modified; an avatar resolved later
// travels separately.
type ArticleView struct {
	Headline    string
	Description string
	Images      []string
	AuthorName  string
	// AuthorImage is the inline avatar taken from the author or the linked
	// Person; empty when neither carries a usable image.
	AuthorImage string

	// DID, Handle and Feed are the raw atproto fields of the author and
	// article, as written in the metadata.
	DID    string
	Handle string
	Feed   string

	// Atproto reports whether the article's @context declares the atproto
	// namespace; AtprotoPresent additionally requires one atproto field.
	Atproto        bool
	AtprotoPresent bool
}

// Identity returns the normalized identity of the author.
func (v ArticleView) Identity() identity.Identity {
	return identity.New(v.Handle, v.DID)
}

// HasAuthorImage reports whether the card can show an avatar without a
// lookup.
func (v ArticleView) HasAuthorImage() bool {
	return v.AuthorImage != ""
}

// Extract links the records and projects the result. It returns false when
// the records contain no Article.
func Extract(records []Record) (ArticleView, bool) {
	linked, ok := Link(records)
	if !ok {
		return ArticleView{}, false
	}
	return linked.View(), true
}

// View projects the linked records into an ArticleView.
func (l Linked) View() ArticleView {
	article := l.Article
	author := l.Author
	if author == nil {
		author = Record{}
	}

	view := ArticleView{
		Headline:    article.String("headline"),
		Description: article.String("description"),
		Images:      imageList(article["image"]),
		AuthorName:  author.String("name"),
		AuthorImage: l.authorImage(),
		DID:         author.String(KeyAtprotoDID),
		Handle:      author.String(KeyAtprotoHandle),
		Feed:        article.String(KeyAtprotoFeed),
		Atproto:     HasAtprotoContext(article[KeyContext]),
	}
	view.AtprotoPresent = view.Atproto && (view.DID != "" || view.Handle != "" || view.Feed != "")
	return view
}

// authorImage applies the precedence author.image, then the linked
// Person's image. The chosen value wins even when it turns out not to be a
// usable URL.
func (l Linked) authorImage() string {
	var source any
	if l.Author != nil && present(l.Author["image"]) {
		source = l.Author["image"]
	} else if l.Person != nil {
		source = l.Person["image"]
	}

	if list, ok := source.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		source = list[0]
	}
	return imageURL(source)
}

// imageList normalizes an image field holding a URL, an ImageObject, or a
// list of either.
func imageList(value any) []string {
	list, ok := value.([]any)
	if !ok {
		if u := imageURL(value); u != "" {
			return []string{u}
		}
		return nil
	}

	images := make([]string, 0, len(list))
	for _, item := range list {
		if u := imageURL(item); u != "" {
			images = append(images, u)
		}
	}
	return images
}

func imageURL(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any:
		obj := Record(v)
		if u := obj.String("url"); u != "" {
			return u
		}
		return obj.String("contentUrl")
	default:
		return ""
	}
}
