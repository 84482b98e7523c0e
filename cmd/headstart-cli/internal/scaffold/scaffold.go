// Package scaffold generates new extensions and registers them in
// internal/app/modules.go.
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"path"
	"path/filepath"
	"regexp"
	"text/template"

	"github.com/spf13/afero"
	"golang.org/x/mod/modfile"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/tools/go/ast/astutil"
)

// ModulesFile is the file holding the extension list, relative to the root.
const ModulesFile = "internal/app/modules.go"

const registerFunc = "NewExtensions"

var validName = regexp.MustCompile(`^[a-z][a-z0-9]*$`)

// ErrExists is returned when the extension directory is already present.
var ErrExists = errors.New("extension already exists")

// Result lists what NewExtension changed.
type Result struct {
	Created    []string
	Registered bool
}

type templateData struct {
	Module     string
	Name       string
	PascalName string
}

// NewExtension writes a skeleton extension called name under root, which
// must be the module root, and appends it to the extension list. Files are
// written before the list is touched; a failed registration is returned with
// the partial Result so the caller can print manual steps.
func NewExtension(fs afero.Fs, root, name string) (*Result, error) {
	if !validName.MatchString(name) || token.IsKeyword(name) {
		return nil, fmt.Errorf("invalid extension name %q: use lowercase letters and digits", name)
	}

	goMod, err := afero.ReadFile(fs, filepath.Join(root, "go.mod"))
	if err != nil {
		return nil, fmt.Errorf("read go.mod: %w", err)
	}
	module := modfile.ModulePath(goMod)
	if module == "" {
		return nil, errors.New("go.mod has no module path")
	}

	dir := filepath.Join(root, "internal", "extensions", name)
	if exists, _ := afero.DirExists(fs, dir); exists {
		return nil, fmt.Errorf("%w: %s", ErrExists, dir)
	}

	data := templateData{
		Module:     module,
		Name:       name,
		PascalName: cases.Title(language.English).String(name),
	}

	files := []struct {
		path  string
		tmpl  string
		gofmt bool
	}{
		{filepath.Join(dir, "extension.go"), extensionTemplate, true},
		{filepath.Join(dir, "extension_test.go"), extensionTestTemplate, true},
		{filepath.Join(root, "web", "templates", "pages", name, "index.html"), pageTemplate, false},
	}

	res := &Result{}
	for _, f := range files {
		if err := generateFile(fs, f.path, f.tmpl, data, f.gofmt); err != nil {
			return res, err
		}
		res.Created = append(res.Created, f.path)
	}

	if err := Register(fs, filepath.Join(root, ModulesFile), module, name); err != nil {
		return res, err
	}
	res.Registered = true
	return res, nil
}

func generateFile(fs afero.Fs, file, tmpl string, data templateData, gofmt bool) error {
	t, err := template.New(filepath.Base(file)).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	out := buf.Bytes()
	if gofmt {
		if out, err = format.Source(out); err != nil {
			return fmt.Errorf("format %s: %w", file, err)
		}
	}

	if err := fs.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fs, file, out, 0o644)
}

// Register appends name.New(...) to the slice returned by NewExtensions in
// modulesPath and imports the extension package.
func Register(fs afero.Fs, modulesPath, module, name string) error {
	src, err := afero.ReadFile(fs, modulesPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", modulesPath, err)
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, modulesPath, src, parser.ParseComments)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", modulesPath, err)
	}

	list := extensionList(file)
	if list == nil {
		return fmt.Errorf("%s: no slice literal returned by %s", modulesPath, registerFunc)
	}

	// Insert the entry as text before the closing brace so the printer keeps
	// one element per line.
	entry := fmt.Sprintf("%[1]s.New(%[1]s.Dependencies{\n\tStore:  deps.Store,\n\tModels: deps.Models,\n}),\n", name)
	offset := fset.Position(list.Rbrace).Offset
	edited := make([]byte, 0, len(src)+len(entry))
	edited = append(edited, src[:offset]...)
	edited = append(edited, entry...)
	edited = append(edited, src[offset:]...)

	fset = token.NewFileSet()
	file, err = parser.ParseFile(fset, modulesPath, edited, parser.ParseComments)
	if err != nil {
		return fmt.Errorf("edited %s does not parse: %w", modulesPath, err)
	}
	astutil.AddImport(fset, file, path.Join(module, "internal", "extensions", name))

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return fmt.Errorf("failed to format AST: %w", err)
	}
	return afero.WriteFile(fs, modulesPath, buf.Bytes(), 0o644)
}

func extensionList(file *ast.File) *ast.CompositeLit {
	var list *ast.CompositeLit
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Name.Name != registerFunc || fn.Body == nil {
			continue
		}
		ast.Inspect(fn.Body, func(n ast.Node) bool {
			ret, ok := n.(*ast.ReturnStmt)
			if !ok || len(ret.Results) != 1 {
				return list == nil
			}
			if lit, ok := ret.Results[0].(*ast.CompositeLit); ok {
				list = lit
			}
			return false
		})
	}
	return list
}

const extensionTemplate = `// Package {{.Name}} serves the {{.Name}} pages.
package {{.Name}}

import (
	"context"

	"github.com/labstack/echo/v4"

	"{{.Module}}/internal/content"
	"{{.Module}}/internal/extension"
	"{{.Module}}/internal/hooks"
	"{{.Module}}/internal/models"
	"{{.Module}}/internal/view"
)

// Type{{.PascalName}} is the document type handled by this extension.
const Type{{.PascalName}} = "xinmods:{{.Name}}"

// Dependencies holds all the services that the extension requires.
type Dependencies struct {
	Store  content.Store
	Models *models.Registry
}

// Extension implements extension.Extension and extension.Router.
type Extension struct {
	store  content.Store
	models *models.Registry
}

// New creates the {{.Name}} extension.
func New(deps Dependencies) *Extension {
	return &Extension{store: deps.Store, models: deps.Models}
}

// Name returns the extension's unique identifier.
func (e *Extension) Name() string {
	return "{{.Name}}"
}

// Register declares the page hook and the transformers.
func (e *Extension) Register(r *extension.Registrar) error {
	r.Hook("view.{{.Name}}.landing", hooks.Async(e.landing))
	r.Transform(Type{{.PascalName}}, "card", func(ctx any) (any, error) {
		doc, err := content.AsDocument(ctx)
		if err != nil {
			return nil, err
		}
		return view.Card{Title: doc.String("title"), Description: doc.String("description")}, nil
	})
	return nil
}

// Routes mounts the {{.Name}} pages.
func (e *Extension) Routes(g *echo.Group, v *view.Endpoints) {
	g.GET("/{{.Name}}", v.View("{{.Name}}/index", "view.common", "view.{{.Name}}.landing"))
}

func (e *Extension) landing(ctx context.Context, args ...any) (any, error) {
	res, err := e.store.Query(ctx, content.Query{Type: Type{{.PascalName}}, Descending: true})
	if err != nil {
		return nil, err
	}
	return map[string]any{"items": res.Documents}, nil
}
`

const extensionTestTemplate = `package {{.Name}}

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"{{.Module}}/internal/extension"
	"{{.Module}}/internal/hooks"
	"{{.Module}}/internal/models"
	"{{.Module}}/internal/reload"
)

func TestExtension_Registers(t *testing.T) {
	hookRegistry := hooks.NewRegistry()
	modelRegistry := models.NewRegistry()
	host := extension.NewHost(hookRegistry, modelRegistry, reload.NewCoordinator())

	require.NoError(t, host.Install(New(Dependencies{Models: modelRegistry})))

	assert.Equal(t, 1, hookRegistry.Count())
	assert.Len(t, modelRegistry.Keys(), 1)
}
`

const pageTemplate = `{{"{{"}}define "content"{{"}}"}}<section class="{{.PascalName}}">
    <h1>{{.PascalName}}</h1>
    <div class="Cards">{{"{{"}}range .items{{"}}"}}{{"{{"}}template "card.html" (transform . "card"){{"}}"}}{{"{{"}}end{{"}}"}}</div>
</section>{{"{{"}}end{{"}}"}}
`
