package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/agentic-research/notional/api"
	"github.com/agentic-research/notional/internal/block"
	"github.com/agentic-research/notional/internal/property"
	"github.com/agentic-research/notional/internal/schema"
)

const (
	dbID     = "d9824bdc-8445-4327-be8b-5b47500af6ce"
	pageID   = "59833787-2cf9-4fdf-8782-e53db20768a5"
	parentID = "98ad959b-2b6a-4774-80ee-00246fb0ea9b"
	blockID  = "c02fc1d3-db8b-45c5-a222-27595b15aea7"
	userID   = "ee5f0f84-409a-440f-983a-a5315961c6e4"
)

const apiDatabase = `{
  "object": "database",
  "id": "` + dbID + `",
  "title": [{"type": "text", "text": {"content": "Grocery List"}, "plain_text": "Grocery List"}],
  "parent": {"type": "page_id", "page_id": "` + parentID + `"},
  "properties": {
    "Name": {"id": "title", "name": "Name", "type": "title", "title": {}},
    "Price": {"id": "BJXS", "name": "Price", "type": "number", "number": {"format": "dollar"}},
    "Food group": {"id": "TJmr", "name": "Food group", "type": "select",
      "select": {"options": [{"id": "1", "name": "Vegetable", "color": "green"}, {"id": "2", "name": "Fruit", "color": "red"}]}}
  }
}`

func groceryPage(id, name string, price float64) string {
	return fmt.Sprintf(`{
  "object": "page",
  "id": %q,
  "parent": {"type": "database_id", "database_id": "d9824bdc84454327be8b5b47500af6ce"},
  "archived": false,
  "has_children": true,
  "properties": {
    "Name": {"id": "title", "type": "title", "title": [{"type": "text", "text": {"content": %q}, "plain_text": %q}]},
    "Price": {"id": "BJXS", "type": "number", "number": %v},
    "Food group": {"id": "TJmr", "type": "select", "select": {"id": "1", "name": "Vegetable", "color": "green"}}
  }
}`, id, name, name, price)
}

func paragraph(id, text string) string {
	return fmt.Sprintf(`{"object":"block","id":%q,"type":"paragraph","has_children":false,
		"paragraph":{"rich_text":[{"type":"text","text":{"content":%q},"plain_text":%q}]}}`, id, text, text)
}

func TestFetchPage_BindsSchema(t *testing.T) {
	ft := newFake(t).
		on("GET", "pages/"+pageID, groceryPage(pageID, "Tuscan kale", 2.5)).
		on("GET", "databases/"+dbID, apiDatabase)
	s := New(ft)

	p, err := s.FetchPage(context.Background(), "598337872cf94fdf8782e53db20768a5")
	require.NoError(t, err)

	assert.Equal(t, "Tuscan kale", p.Title())
	require.NotNil(t, p.Schema())
	assert.Equal(t, dbID, p.Schema().DatabaseID)

	var mismatch *api.KindMismatchError
	assert.ErrorAs(t, p.Set("Price", property.NewRichText("cheap")), &mismatch)
	assert.Len(t, ft.sent("GET"), 2)
}

func TestFetchPage_Errors(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		ft := newFake(t)
		_, err := New(ft).FetchPage(context.Background(), "not-an-id")
		assert.ErrorIs(t, err, api.ErrInvalidID)
		assert.Empty(t, ft.calls)
	})

	t.Run("transport error passes through", func(t *testing.T) {
		ft := newFake(t).fail("GET", "pages/"+pageID, 404, `{"object":"error","code":"object_not_found"}`)
		_, err := New(ft).FetchPage(context.Background(), pageID)

		var te *api.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, 404, te.Status)
	})

	t.Run("value outside schema", func(t *testing.T) {
		bad := `{"object":"page","id":"` + pageID + `","parent":{"type":"database_id","database_id":"` + dbID + `"},
			"properties":{"Food group":{"id":"TJmr","type":"select","select":{"name":"Dairy"}}}}`
		ft := newFake(t).on("GET", "pages/"+pageID, bad).on("GET", "databases/"+dbID, apiDatabase)

		core, logs := observer.New(zapcore.WarnLevel)
		_, err := New(ft, WithLogger(zap.New(core))).FetchPage(context.Background(), pageID)

		var ce *api.ConstraintError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, 1, logs.FilterMessage("decode failed").Len())
	})
}

func TestSavePage(t *testing.T) {
	ctx := context.Background()

	t.Run("sends dirty properties only", func(t *testing.T) {
		ft := newFake(t).
			on("GET", "pages/"+pageID, groceryPage(pageID, "Tuscan kale", 2.5)).
			on("GET", "databases/"+dbID, apiDatabase).
			on("PATCH", "pages/"+pageID, groceryPage(pageID, "Tuscan kale", 3))
		s := New(ft)

		p, err := s.FetchPage(ctx, pageID)
		require.NoError(t, err)
		require.NoError(t, p.Set("Price", property.NewNumber(3)))
		require.NoError(t, s.SavePage(ctx, p))

		patches := ft.sent("PATCH")
		require.Len(t, patches, 1)
		assert.JSONEq(t, `{"properties":{"Price":{"number":3}}}`, patches[0].Body)

		assert.False(t, p.IsDirty())
		price, err := p.Get("Price")
		require.NoError(t, err)
		assert.Equal(t, 3.0, price.(*property.Number).Float())
	})

	t.Run("clean page is not sent", func(t *testing.T) {
		ft := newFake(t).
			on("GET", "pages/"+pageID, groceryPage(pageID, "Tuscan kale", 2.5)).
			on("GET", "databases/"+dbID, apiDatabase)
		s := New(ft)

		p, err := s.FetchPage(ctx, pageID)
		require.NoError(t, err)
		require.NoError(t, s.SavePage(ctx, p))
		assert.Empty(t, ft.sent("PATCH"))
	})

	t.Run("failed write keeps changes", func(t *testing.T) {
		ft := newFake(t).
			on("GET", "pages/"+pageID, groceryPage(pageID, "Tuscan kale", 2.5)).
			on("GET", "databases/"+dbID, apiDatabase).
			fail("PATCH", "pages/"+pageID, 409, `{"code":"conflict_error"}`)
		s := New(ft)

		p, err := s.FetchPage(ctx, pageID)
		require.NoError(t, err)
		require.NoError(t, p.Set("Price", property.NewNumber(3)))

		var te *api.TransportError
		require.ErrorAs(t, s.SavePage(ctx, p), &te)
		assert.Equal(t, []string{"Price"}, p.Dirty())
	})
}

func TestUpdatePage(t *testing.T) {
	ft := newFake(t).
		on("GET", "pages/"+pageID, groceryPage(pageID, "Tuscan kale", 2.5)).
		on("GET", "databases/"+dbID, apiDatabase).
		on("PATCH", "pages/"+pageID, groceryPage(pageID, "Tuscan kale", 2.5))
	s := New(ft)

	_, err := s.UpdatePage(context.Background(), pageID, map[string]property.Value{
		"Food group": property.NewSelect("Dairy"),
	})
	var ce *api.ConstraintError
	require.ErrorAs(t, err, &ce)
	assert.Empty(t, ft.sent("PATCH"), "invalid values are never sent")

	_, err = s.UpdatePage(context.Background(), pageID, map[string]property.Value{
		"Food group": property.NewSelect("Fruit"),
	})
	require.NoError(t, err)
	patches := ft.sent("PATCH")
	require.Len(t, patches, 1)
	assert.JSONEq(t, `{"properties":{"Food group":{"select":{"name":"Fruit"}}}}`, patches[0].Body)
}

func TestCreatePage(t *testing.T) {
	ft := newFake(t).
		on("GET", "databases/"+dbID, apiDatabase).
		on("POST", "pages", groceryPage(pageID, "Apples", 1))
	s := New(ft)

	p, err := s.CreatePage(context.Background(), api.DatabaseParent(dbID), map[string]property.Value{
		"Name":  property.NewTitle("Apples"),
		"Price": property.NewNumber(1),
	}, block.NewParagraph("crisp"))
	require.NoError(t, err)
	assert.Equal(t, pageID, p.ID)
	assert.Equal(t, "Apples", p.Title())

	posts := ft.sent("POST")
	require.Len(t, posts, 1)
	assert.JSONEq(t, `{
		"parent": {"type": "database_id", "database_id": "`+dbID+`"},
		"properties": {
			"Name": {"title": [{"type": "text", "text": {"content": "Apples"}}]},
			"Price": {"number": 1}
		},
		"children": [{"object": "block", "type": "paragraph", "paragraph": {"rich_text": [{"type": "text", "text": {"content": "crisp"}}]}}]
	}`, posts[0].Body)

	_, err = s.CreatePage(context.Background(), api.DatabaseParent(dbID), map[string]property.Value{
		"Colour": property.NewRichText("red"),
	})
	var unknown *api.UnknownPropertyError
	assert.ErrorAs(t, err, &unknown)
	assert.Len(t, ft.sent("POST"), 1)
}

func TestCreateDatabase(t *testing.T) {
	ft := newFake(t).on("POST", "databases", apiDatabase)
	sch := schema.New().
		Add("Name", schema.Title()).
		Add("Price", schema.Number("dollar")).
		Add("Food group", schema.Select("Vegetable", "Fruit"))

	db, err := New(ft).CreateDatabase(context.Background(), parentID, "Grocery List", sch)
	require.NoError(t, err)
	assert.Equal(t, "Grocery List", db.Name())
	assert.Equal(t, 3, db.Schema.Len())

	posts := ft.sent("POST")
	require.Len(t, posts, 1)
	assert.Contains(t, posts[0].Body, `"page_id":"`+parentID+`"`)
}

func TestQuery_Pagination(t *testing.T) {
	ft := newFake(t).
		on("GET", "databases/"+dbID, apiDatabase).
		on("POST", "databases/"+dbID+"/query", listOf(true, "c1", groceryPage("a1111111-0000-0000-0000-000000000001", "one", 1))).
		on("POST", "databases/"+dbID+"/query", listOf(true, "c2", groceryPage("a1111111-0000-0000-0000-000000000002", "two", 2))).
		on("POST", "databases/"+dbID+"/query", listOf(false, "", groceryPage("a1111111-0000-0000-0000-000000000003", "three", 3)))
	s := New(ft, WithPageSize(1))

	filter := map[string]any{"property": "Price", "number": map[string]any{"greater_than": 0}}
	it, err := s.Query(dbID).
		Filter(filter).
		Sort(map[string]any{"property": "Price", "direction": "ascending"}).
		Execute(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ft.sent("POST"), "Execute does not fetch results")

	var titles []string
	for p, err := range it.All(context.Background()) {
		require.NoError(t, err)
		require.NotNil(t, p.Schema())
		titles = append(titles, p.Title())
	}
	assert.Equal(t, []string{"one", "two", "three"}, titles)
	assert.Equal(t, 3, it.PageNumber())

	posts := ft.sent("POST")
	require.Len(t, posts, 3)
	assert.JSONEq(t, `{"page_size":1,
		"filter":{"property":"Price","number":{"greater_than":0}},
		"sorts":[{"property":"Price","direction":"ascending"}]}`, posts[0].Body)
	assert.Contains(t, posts[1].Body, `"start_cursor":"c1"`)
	assert.Contains(t, posts[2].Body, `"start_cursor":"c2"`)
}

func TestQuery_First(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		ft := newFake(t).
			on("GET", "databases/"+dbID, apiDatabase).
			on("POST", "databases/"+dbID+"/query", listOf(true, "c1", groceryPage(pageID, "kale", 1)))
		p, err := New(ft).Query(dbID).First(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "kale", p.Title())
		assert.Len(t, ft.sent("POST"), 1)
		assert.Contains(t, ft.sent("POST")[0].Body, `"page_size":1`)
	})

	t.Run("no match", func(t *testing.T) {
		ft := newFake(t).
			on("GET", "databases/"+dbID, apiDatabase).
			on("POST", "databases/"+dbID+"/query", listOf(false, ""))
		_, err := New(ft).Query(dbID).First(context.Background())
		assert.ErrorIs(t, err, ErrNoResults)
	})
}

func TestQueryDatabase_FetchFailure(t *testing.T) {
	ft := newFake(t).
		on("GET", "databases/"+dbID, apiDatabase).
		on("POST", "databases/"+dbID+"/query", listOf(true, "c1", groceryPage(pageID, "kale", 1))).
		fail("POST", "databases/"+dbID+"/query", 500, "internal")
	// the failure is queued second, so the first batch succeeds and the second fails
	it, err := New(ft).QueryDatabase(context.Background(), dbID, nil)
	require.NoError(t, err)

	pages, err := it.Collect(context.Background())
	assert.Len(t, pages, 1)
	var ie *api.IterationError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 2, ie.Page)
}

func TestQuery_MalformedList(t *testing.T) {
	for name, reply := range map[string]string{
		"no results":       `{"object":"list","has_more":false,"next_cursor":null}`,
		"null results":     `{"object":"list","results":null,"has_more":false}`,
		"no has_more":      `{"object":"list","results":[]}`,
		"string has_more":  `{"object":"list","results":[],"has_more":"false"}`,
		"results not list": `{"object":"list","results":{},"has_more":false}`,
	} {
		t.Run(name, func(t *testing.T) {
			ft := newFake(t).
				on("GET", "databases/"+dbID, apiDatabase).
				on("POST", "databases/"+dbID+"/query", reply)
			it, err := New(ft).QueryDatabase(context.Background(), dbID, nil)
			require.NoError(t, err)

			pages, err := it.Collect(context.Background())
			assert.Empty(t, pages)
			var ie *api.IterationError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, 1, ie.Page)
			var se *api.SchemaError
			assert.ErrorAs(t, err, &se)
		})
	}
}

func TestSearch(t *testing.T) {
	ft := newFake(t).
		on("POST", "search", listOf(true, "c1", groceryPage(pageID, "Tuscan kale", 2.5))).
		on("POST", "search", listOf(false, "", apiDatabase))
	it := New(ft, WithPageSize(1)).Search("grocer", ObjectFilter("page"))
	assert.Empty(t, ft.sent("POST"), "Search does not fetch results")

	results, err := it.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "page", results[0].Object())
	assert.Equal(t, "Tuscan kale", results[0].Page.Title())
	assert.Nil(t, results[0].Page.Schema(), "search hits are not bound to a schema")
	assert.Equal(t, "database", results[1].Object())
	assert.Equal(t, "Grocery List", results[1].Database.Name())

	posts := ft.sent("POST")
	require.Len(t, posts, 2)
	assert.JSONEq(t, `{"page_size":1,"query":"grocer","filter":{"property":"object","value":"page"}}`, posts[0].Body)
	assert.JSONEq(t, `{"page_size":1,"query":"grocer","filter":{"property":"object","value":"page"},"start_cursor":"c1"}`, posts[1].Body)

	t.Run("empty query", func(t *testing.T) {
		ft := newFake(t).on("POST", "search", listOf(false, ""))
		results, err := New(ft).Search("", nil).Collect(context.Background())
		require.NoError(t, err)
		assert.Empty(t, results)
		assert.JSONEq(t, `{"page_size":100}`, ft.sent("POST")[0].Body)
	})

	t.Run("unexpected object", func(t *testing.T) {
		ft := newFake(t).on("POST", "search", listOf(false, "", `{"object":"user","id":"`+userID+`"}`))
		_, err := New(ft).Search("", nil).Collect(context.Background())
		var se *api.SchemaError
		assert.ErrorAs(t, err, &se)
	})
}

func TestLoadBody_ThroughSession(t *testing.T) {
	ft := newFake(t).
		on("GET", "pages/"+pageID, groceryPage(pageID, "Tuscan kale", 2.5)).
		on("GET", "databases/"+dbID, apiDatabase).
		on("GET", "blocks/"+pageID+"/children", listOf(true, "b1", paragraph(blockID, "first"))).
		on("GET", "blocks/"+pageID+"/children", listOf(false, "",
			`{"object":"block","id":"`+userID+`","type":"ai_block","has_children":false,"ai_block":{}}`))

	core, logs := observer.New(zapcore.WarnLevel)
	s := New(ft, WithLogger(zap.New(core)))
	ctx := context.Background()

	p, err := s.FetchPage(ctx, pageID)
	require.NoError(t, err)
	_, loaded := p.Body()
	assert.False(t, loaded)

	body, err := p.LoadBody(ctx)
	require.NoError(t, err)
	require.Len(t, body, 2)
	assert.Equal(t, "first", body[0].PlainText())
	assert.IsType(t, &block.Unsupported{}, body[1].Content)
	assert.True(t, body[0].Bound())

	assert.Equal(t, 1, logs.FilterMessage("unsupported block type").Len())

	gets := ft.sent("GET")
	require.Len(t, gets, 4)
	assert.Equal(t, "blocks/"+pageID+"/children?page_size=100", gets[2].Path)
	assert.Equal(t, "blocks/"+pageID+"/children?page_size=100&start_cursor=b1", gets[3].Path)
}

func TestStrictBlocks(t *testing.T) {
	ft := newFake(t).
		on("GET", "blocks/"+blockID, `{"object":"block","id":"`+blockID+`","type":"ai_block","ai_block":{}}`)
	_, err := New(ft, WithStrictBlocks()).FetchBlock(context.Background(), blockID)
	var unknown *api.UnknownBlockTypeError
	assert.ErrorAs(t, err, &unknown)
}

func TestAppendBlocks(t *testing.T) {
	ft := newFake(t).on("PATCH", "blocks/"+pageID+"/children", listOf(false, "", paragraph(blockID, "hello")))
	s := New(ft)

	created, err := s.AppendBlocks(context.Background(), pageID, block.NewParagraph("hello"))
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, blockID, created[0].ID)

	patches := ft.sent("PATCH")
	require.Len(t, patches, 1)
	assert.JSONEq(t, `{"children":[{"object":"block","type":"paragraph",
		"paragraph":{"rich_text":[{"type":"text","text":{"content":"hello"}}]}}]}`, patches[0].Body)

	none, err := s.AppendBlocks(context.Background(), pageID)
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.Len(t, ft.sent("PATCH"), 1)
}

func TestFetchAndDeleteBlock(t *testing.T) {
	ft := newFake(t).
		on("GET", "blocks/"+blockID, paragraph(blockID, "doomed")).
		on("DELETE", "blocks/"+blockID, `{"object":"block","id":"`+blockID+`","type":"paragraph","archived":true,"paragraph":{"rich_text":[]}}`)
	s := New(ft)

	b, err := s.FetchBlock(context.Background(), blockID)
	require.NoError(t, err)
	assert.Equal(t, "doomed", b.PlainText())

	require.NoError(t, s.DeleteBlock(context.Background(), blockID))
	assert.Len(t, ft.sent("DELETE"), 1)
}

func TestUsers(t *testing.T) {
	person := `{"object":"user","id":"` + userID + `","type":"person","name":"Avocado Lovelace","person":{"email":"avo@example.org"}}`
	bot := `{"object":"user","id":"9a3b5ae0-c6e6-482d-b0e1-ed315ee6dc57","type":"bot","name":"Doug","bot":{}}`
	ft := newFake(t).
		on("GET", "users/"+userID, person).
		on("GET", "users", listOf(false, "", person, bot))
	s := New(ft)

	u, err := s.FetchUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Avocado Lovelace", u.DisplayName())
	assert.Equal(t, "avo@example.org", u.Email())

	users, err := s.ListUsers().Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, api.UserBot, users[1].Type)
}
