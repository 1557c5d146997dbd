// cmd/singen/main.go
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/iancoleman/strcase"
)

// This binary is a code-generation and lint tool for provider-managed types.
//
// It scans a package directory for types that satisfy the singleton contract
// (named unexported struct with an InitSingleton() error method) and
// generates exported accessor functions for them, so callers outside the
// package get instances without the package exporting its types.
//
// Key behaviors:
// - Scans all non-test, non-generated .go files in -dir
// - Pairs InitSingleton methods with their receiver type declarations
// - Reports contract problems (exported receiver, wrong signature, non-struct
//   receiver, accessor name collisions) as file:line findings
// - In -check mode prints findings and exits non-zero when any exist; check
//   mode also flags accessors in previously generated files whose type no
//   longer satisfies the contract
// - In generate mode refuses to write while findings exist
// - Formats output with go/format and writes it atomically (temp file +
//   rename) to avoid partial writes

// hookName is the method that marks a type as provider-managed.
const hookName = "InitSingleton"

// providerImport is the import path emitted into generated files.
const providerImport = "github.com/sghaida/osi/singleton"

// managedType is one type in the scanned package that satisfies the contract.
type managedType struct {
	// Name is the type name as declared, e.g. "connPool".
	Name string

	// Accessor is the exported accessor base name, e.g. "ConnPool".
	Accessor string
}

// finding is a contract problem at a source position.
type finding struct {
	Pos     token.Position
	Message string
}

// packageInfo is the result of scanning one package directory.
type packageInfo struct {
	Name     string
	Types    []managedType
	Findings []finding
}

// templateData is the input passed to the Go template.
type templateData struct {
	Package    string
	ImportPath string
	Types      []managedType
}

// run executes the tool logic and returns an exit code.
// It exists separately from main to allow unit testing without os.Exit.
func run(args []string, stderr io.Writer) int {
	flags := flag.NewFlagSet("singen", flag.ContinueOnError)
	flags.SetOutput(stderr)

	dir := flags.String("dir", ".", "package directory to scan")
	outPath := flags.String("out", "", "output .gen.go file path")
	checkOnly := flags.Bool("check", false, "report contract findings without writing a file")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if !*checkOnly && strings.TrimSpace(*outPath) == "" {
		_, _ = fmt.Fprintln(stderr, "usage: singen -dir <package dir> [-check | -out <file.gen.go>]")
		return 2
	}

	info, err := scanPackage(*dir)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "singen:", err)
		return 1
	}

	// Generation rewrites the output anyway; only check mode cares whether a
	// previously generated file went stale.
	if *checkOnly {
		info.Findings = append(info.Findings, staleGenerated(*dir, info.Types)...)
	}

	for _, f := range info.Findings {
		_, _ = fmt.Fprintf(stderr, "%s: %s\n", f.Pos, f.Message)
	}

	if *checkOnly {
		if len(info.Findings) > 0 {
			return 1
		}
		return 0
	}

	// Findings mean the package's singleton intent is broken; the provider
	// would reject those types at runtime, so refuse to generate.
	if len(info.Findings) > 0 {
		return 1
	}

	if len(info.Types) == 0 {
		_, _ = fmt.Fprintf(stderr, "singen: no managed types found in %s\n", *dir)
		return 1
	}

	data := templateData{
		Package:    info.Name,
		ImportPath: providerImport,
		Types:      info.Types,
	}

	rendered := mustExecTemplate(genTemplate, data)
	generatedFilePath := filepath.Clean(*outPath)

	formatted, err := format.Source(rendered)
	if err != nil {
		// Keep the raw output around so the problem is inspectable.
		_ = writeFileAtomic(generatedFilePath, rendered, 0o644)
		_, _ = fmt.Fprintln(stderr, "singen: gofmt/format failed:", err)
		return 1
	}

	must(writeFileAtomic(generatedFilePath, formatted, 0o644))
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// scanPackage parses the non-test, non-generated Go files in dir and pairs
// InitSingleton methods with their receiver type declarations.
func scanPackage(dir string) (*packageInfo, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type typeDecl struct {
		exported bool
		isStruct bool
	}
	type hookDecl struct {
		recv  string
		valid bool
		pos   token.Position
	}

	typesByName := make(map[string]typeDecl)
	var hooks []hookDecl

	fileSet := token.NewFileSet()
	info := &packageInfo{}
	parsedAny := false

	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}

		fileName := entry.Name()
		if !strings.HasSuffix(fileName, ".go") ||
			strings.HasSuffix(fileName, "_test.go") ||
			strings.HasSuffix(fileName, ".gen.go") {
			continue
		}

		filePath := filepath.Join(dir, fileName)

		// Parse with AllErrors so we can still get partial ASTs when possible.
		parsedFile, parseErr := parser.ParseFile(fileSet, filePath, nil, parser.AllErrors)
		if !hasPackageClause(parsedFile) {
			_ = parseErr
			continue
		}

		parsedAny = true
		if info.Name == "" {
			info.Name = parsedFile.Name.Name
		}

		for _, declaration := range parsedFile.Decls {
			switch decl := declaration.(type) {
			case *ast.GenDecl:
				if decl.Tok != token.TYPE {
					continue
				}
				for _, spec := range decl.Specs {
					typeSpec, ok := spec.(*ast.TypeSpec)
					if !ok || typeSpec.Name == nil {
						continue
					}
					_, isStruct := typeSpec.Type.(*ast.StructType)
					typesByName[typeSpec.Name.Name] = typeDecl{
						exported: ast.IsExported(typeSpec.Name.Name),
						isStruct: isStruct,
					}
				}

			case *ast.FuncDecl:
				if decl.Recv == nil || decl.Name == nil || decl.Name.Name != hookName {
					continue
				}
				recvName, ok := receiverTypeName(decl)
				if !ok {
					continue
				}
				hooks = append(hooks, hookDecl{
					recv:  recvName,
					valid: hookSignatureOK(decl),
					pos:   fileSet.Position(decl.Pos()),
				})
			}
		}
	}

	if !parsedAny {
		return nil, fmt.Errorf("no parsable Go source files in %s", dir)
	}

	// Only hook-bearing types signal singleton intent; everything else in the
	// package is none of our business.
	accessorOwner := make(map[string]string, len(hooks))
	for _, hook := range hooks {
		decl, declared := typesByName[hook.recv]
		switch {
		case !declared:
			// Receiver type not declared in any parsed file; the compiler
			// will complain long before we need to.
			continue

		case !decl.isStruct:
			info.Findings = append(info.Findings, finding{
				Pos:     hook.pos,
				Message: hook.recv + " is not a struct type; the provider will reject it",
			})

		case decl.exported:
			info.Findings = append(info.Findings, finding{
				Pos:     hook.pos,
				Message: "exported type " + hook.recv + " has " + hookName + "; the provider will reject it",
			})

		case !hook.valid:
			info.Findings = append(info.Findings, finding{
				Pos:     hook.pos,
				Message: hookName + " on " + hook.recv + " must have signature func() error",
			})

		default:
			accessor := strcase.ToCamel(hook.recv)
			if prev, taken := accessorOwner[accessor]; taken {
				info.Findings = append(info.Findings, finding{
					Pos:     hook.pos,
					Message: "accessor " + accessor + " generated for both " + prev + " and " + hook.recv,
				})
				continue
			}
			accessorOwner[accessor] = hook.recv
			info.Types = append(info.Types, managedType{Name: hook.recv, Accessor: accessor})
		}
	}

	sort.Slice(info.Types, func(i, j int) bool { return info.Types[i].Name < info.Types[j].Name })
	return info, nil
}

// staleGenerated parses singen's previously generated files in dir and
// reports exported accessors whose managed type no longer satisfies the
// contract (hook removed, type renamed or exported, file deleted).
func staleGenerated(dir string, types []managedType) []finding {
	current := make(map[string]struct{}, len(types))
	for _, managed := range types {
		current[managed.Name] = struct{}{}
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var findings []finding
	fileSet := token.NewFileSet()

	for _, entry := range dirEntries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".gen.go") {
			continue
		}

		filePath := filepath.Join(dir, entry.Name())
		parsedFile, parseErr := parser.ParseFile(fileSet, filePath, nil, parser.ParseComments)
		if !hasPackageClause(parsedFile) {
			_ = parseErr
			continue
		}
		if !generatedBySingen(parsedFile) {
			// Some other generator's output; none of our business.
			continue
		}

		for _, declaration := range parsedFile.Decls {
			funcDecl, ok := declaration.(*ast.FuncDecl)
			if !ok || funcDecl.Recv != nil || !ast.IsExported(funcDecl.Name.Name) {
				continue
			}
			typeName, ok := accessorResultType(funcDecl)
			if !ok {
				continue
			}
			if _, stillManaged := current[typeName]; stillManaged {
				continue
			}
			findings = append(findings, finding{
				Pos:     fileSet.Position(funcDecl.Pos()),
				Message: funcDecl.Name.Name + " references " + typeName + ", which no longer satisfies the contract; regenerate",
			})
		}
	}
	return findings
}

// generatedBySingen reports whether the file carries singen's generated-code
// header before the package clause.
func generatedBySingen(parsedFile *ast.File) bool {
	for _, group := range parsedFile.Comments {
		if group.Pos() >= parsedFile.Package {
			break
		}
		for _, comment := range group.List {
			if strings.Contains(comment.Text, "Code generated by singen") {
				return true
			}
		}
	}
	return false
}

// accessorResultType extracts t from an accessor's leading *t result.
func accessorResultType(funcDecl *ast.FuncDecl) (string, bool) {
	results := funcDecl.Type.Results
	if results == nil || len(results.List) == 0 {
		return "", false
	}

	star, ok := results.List[0].Type.(*ast.StarExpr)
	if !ok {
		return "", false
	}
	ident, ok := star.X.(*ast.Ident)
	if !ok {
		return "", false
	}
	return ident.Name, true
}

// hasPackageClause reports whether parsing got far enough to yield a real
// package clause. ParseFile returns a non-nil placeholder file with an empty
// package name, rather than nil, when the clause itself does not parse.
func hasPackageClause(parsedFile *ast.File) bool {
	return parsedFile != nil && parsedFile.Name != nil && parsedFile.Name.Name != ""
}

// receiverTypeName reduces a method receiver to its plain type name.
// Pointer and value receivers both qualify; anything fancier (e.g. generic
// receivers) does not.
func receiverTypeName(funcDecl *ast.FuncDecl) (string, bool) {
	if funcDecl.Recv == nil || len(funcDecl.Recv.List) != 1 {
		return "", false
	}

	recvType := funcDecl.Recv.List[0].Type
	if star, ok := recvType.(*ast.StarExpr); ok {
		recvType = star.X
	}

	ident, ok := recvType.(*ast.Ident)
	if !ok {
		return "", false
	}
	return ident.Name, true
}

// hookSignatureOK reports whether the method is exactly func() error.
func hookSignatureOK(funcDecl *ast.FuncDecl) bool {
	funcType := funcDecl.Type
	if funcType.Params != nil && len(funcType.Params.List) > 0 {
		return false
	}
	if funcType.Results == nil || len(funcType.Results.List) != 1 {
		return false
	}

	result := funcType.Results.List[0]
	if len(result.Names) > 1 {
		return false
	}
	resultIdent, ok := result.Type.(*ast.Ident)
	return ok && resultIdent.Name == "error"
}

// genTemplate is the Go source template for the generated accessors.
// Output goes through go/format, so spacing here only needs to be close.
var genTemplate = template.Must(
	template.New("singen").Parse(`// Code generated by singen; DO NOT EDIT.

package {{.Package}}

import (
	"{{.ImportPath}}"
)
{{range .Types}}
// {{.Accessor}} returns the process-wide {{.Name}} instance, constructing it
// on first use.
func {{.Accessor}}() (*{{.Name}}, error) {
	return singleton.Instance[{{.Name}}]()
}

// Must{{.Accessor}} is {{.Accessor}} but panics when the instance cannot be
// constructed.
func Must{{.Accessor}}() *{{.Name}} {
	return singleton.MustInstance[{{.Name}}]()
}
{{end}}`),
)

func mustExecTemplate(tpl *template.Template, data any) []byte {
	var sb strings.Builder
	must(tpl.Execute(&sb, data))
	return []byte(sb.String())
}

// tempFile abstracts an os.File for testability.
type tempFile interface {
	Name() string
	Write([]byte) (int, error)
	Close() error
}

// File operation hooks, overridden in tests.
var (
	createTempFile = func(dir, pattern string) (tempFile, error) { return os.CreateTemp(dir, pattern) }
	chmodFile      = os.Chmod
	renameFile     = os.Rename
	removeFile     = os.Remove
)

// writeFileAtomic writes a file atomically.
//
// It writes to a temporary file in the same directory and then renames it
// over the target path, ensuring readers never observe partial writes.
func writeFileAtomic(targetPath string, data []byte, perm os.FileMode) (err error) {
	targetDir := filepath.Dir(targetPath)

	tmpFile, err := createTempFile(targetDir, filepath.Base(targetPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if err != nil {
			_ = removeFile(tmpPath)
		}
	}()

	if _, err = tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}
	if err = chmodFile(tmpPath, perm); err != nil {
		return err
	}
	if err = renameFile(tmpPath, targetPath); err != nil {
		return err
	}
	return nil
}

// must panics if err is non-nil.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
