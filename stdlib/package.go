package stdlib

import (
	"os"
	"strings"

	"git.lolli.tech/lollipopkit/lua54/internal/config"
	"git.lolli.tech/lollipopkit/lua54/rt"
)

// openPackage wires require/package.loaded/package.preload/package.path
// to the runtime's Loaded/Preload tables (§6.2/§6.3), searching the
// filesystem using the path template from internal/config.
func openPackage(r *rt.Runtime) {
	cfg := config.Load()

	pkg := newLibTable(r, "package")
	_ = pkg.Set("loaded", r.Loaded)
	_ = pkg.Set("preload", r.Preload)
	_ = pkg.Set("path", cfg.SearchPath)
	_ = pkg.Set("config", "/\n;\n?\n!\n-\n")

	reg(r.Globals, "require", func(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
		return requireModule(r, cfg, args)
	})
	reg(pkg, "searchpath", pkgSearchPath)
}

// pkgSearchPath implements package.searchpath (§4.10): try each ?-template
// in path against name (with sep swapped for rep first), returning the
// first existing file or nil plus a listing of every path attempted.
func pkgSearchPath(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	name := checkString(r, "searchpath", args, 0)
	path := checkString(r, "searchpath", args, 1)
	sep := optString(args, 2, ".")
	rep := optString(args, 3, string(os.PathSeparator))
	if sep != "" {
		name = strings.ReplaceAll(name, sep, rep)
	}
	var tried strings.Builder
	for _, tmpl := range strings.Split(path, ";") {
		cand := strings.ReplaceAll(tmpl, "?", name)
		if fi, err := os.Stat(cand); err == nil && !fi.IsDir() {
			return []rt.Value{cand}, nil
		}
		tried.WriteString("\n\tno file '")
		tried.WriteString(cand)
		tried.WriteByte('\'')
	}
	return []rt.Value{nil, tried.String()}, nil
}

func requireModule(r *rt.Runtime, cfg *config.Config, args []rt.Value) ([]rt.Value, error) {
	name := checkString(r, "require", args, 0)

	if v := r.Loaded.Get(name); v != nil {
		return []rt.Value{v}, nil
	}

	if loader := r.Preload.Get(name); loader != nil {
		results, err := rt.Call(r, loader, []rt.Value{name})
		if err != nil {
			return nil, err
		}
		v := first(results)
		if v == nil {
			v = true
		}
		_ = r.Loaded.Set(name, v)
		return []rt.Value{v}, nil
	}

	path := findModuleFile(cfg, name)
	if path == "" {
		rt.Raisef(r, "module '%s' not found", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		rt.Raisef(r, "error loading module '%s' from file '%s':\n\t%s", name, path, err.Error())
	}
	closure, lerr := rt.Load(data, "@"+path)
	if lerr != nil {
		rt.Raisef(r, "%s", lerr.Error())
	}
	results, cerr := rt.Call(r, closure, []rt.Value{name, path})
	if cerr != nil {
		return nil, cerr
	}
	v := first(results)
	if v == nil {
		v = true
	}
	_ = r.Loaded.Set(name, v)
	return []rt.Value{v}, nil
}

func findModuleFile(cfg *config.Config, name string) string {
	for _, cand := range cfg.Candidates(name) {
		if fi, err := os.Stat(cand); err == nil && !fi.IsDir() {
			return cand
		}
	}
	return ""
}

func first(vs []rt.Value) rt.Value {
	if len(vs) == 0 {
		return nil
	}
	return vs[0]
}
