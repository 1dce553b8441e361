package stdlib

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"git.lolli.tech/lollipopkit/lua54/rt"
)

// luaFile is the userdata payload behind a Lua file handle, backed by
// an *os.File plus a buffered reader for line-oriented reads.
type luaFile struct {
	f      *os.File
	r      *bufio.Reader
	w      *bufio.Writer
	closed bool
}

var fileMeta *rt.Table

var defaultOutput *luaFile
var defaultInput *luaFile

func openIO(r *rt.Runtime) {
	fileMeta = rt.NewTable()
	methods := rt.NewTable()
	reg(methods, "write", fileWrite)
	reg(methods, "read", fileRead)
	reg(methods, "close", fileClose)
	reg(methods, "flush", fileFlush)
	reg(methods, "lines", fileLines)
	reg(methods, "seek", fileSeek)
	_ = fileMeta.Set("__index", methods)
	_ = fileMeta.Set("__name", "FILE*")
	_ = fileMeta.Set("__tostring", rt.NewGoFunc("file-tostring", func(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
		return []rt.Value{"file (FILE*)"}, nil
	}))

	defaultOutput = &luaFile{f: os.Stdout, w: stdout}
	defaultInput = &luaFile{f: os.Stdin, r: bufio.NewReader(os.Stdin)}

	t := newLibTable(r, "io")
	reg(t, "write", ioWrite)
	reg(t, "read", ioRead)
	reg(t, "open", ioOpen)
	reg(t, "close", ioClose)
	reg(t, "lines", ioLines)
	_ = t.Set("stdout", newFileUserdata(defaultOutput))
	_ = t.Set("stdin", newFileUserdata(defaultInput))
	_ = t.Set("stderr", newFileUserdata(&luaFile{f: os.Stderr, w: bufio.NewWriter(os.Stderr)}))
}

func newFileUserdata(lf *luaFile) *rt.Userdata {
	return &rt.Userdata{Data: lf, Meta: fileMeta}
}

func asFile(r *rt.Runtime, fname string, args []rt.Value, i int) *luaFile {
	u, ok := arg(args, i).(*rt.Userdata)
	if !ok {
		argErrorf(r, fname, i+1, "FILE* expected")
	}
	lf, ok := u.Data.(*luaFile)
	if !ok {
		argErrorf(r, fname, i+1, "FILE* expected")
	}
	return lf
}

// writeString renders a Lua write() argument (string or number) exactly
// as string.format("%s", v) would, per §4.9's io.write argument rule.
func writeString(v rt.Value) string {
	switch x := v.(type) {
	case string:
		return x
	default:
		return rt.NumberToString(x)
	}
}

func fileWrite(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	lf := asFile(r, "write", args, 0)
	for _, v := range args[1:] {
		s := writeString(v)
		if _, err := lf.w.WriteString(s); err != nil {
			return []rt.Value{nil, err.Error()}, nil
		}
	}
	return []rt.Value{args[0]}, nil
}

func ioWrite(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	for _, v := range args {
		s := writeString(v)
		if _, err := defaultOutput.w.WriteString(s); err != nil {
			return []rt.Value{nil, err.Error()}, nil
		}
	}
	defaultOutput.w.Flush()
	return []rt.Value{newFileUserdata(defaultOutput)}, nil
}

func readOne(lf *luaFile, format string) (rt.Value, error) {
	switch format {
	case "l", "*l", "L", "*L":
		line, err := lf.r.ReadString('\n')
		if err != nil && line == "" {
			return nil, nil
		}
		if format == "l" || format == "*l" {
			for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
				line = line[:len(line)-1]
			}
		}
		return line, nil
	case "n", "*n":
		var f float64
		_, err := fmt.Fscan(lf.r, &f)
		if err != nil {
			return nil, nil
		}
		if i, ok := rt.FloatToInteger(f); ok && f == float64(i) {
			return i, nil
		}
		return f, nil
	case "a", "*a":
		rest, _ := io.ReadAll(lf.r)
		return string(rest), nil
	default:
		return nil, fmt.Errorf("invalid format '%s'", format)
	}
}

func fileRead(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	lf := asFile(r, "read", args, 0)
	if len(args) == 1 {
		v, err := readOne(lf, "l")
		if err != nil {
			rt.Raisef(r, "%s", err.Error())
		}
		return []rt.Value{v}, nil
	}
	out := make([]rt.Value, 0, len(args)-1)
	for _, fa := range args[1:] {
		if n, ok := rt.ToInteger(fa); ok {
			buf := make([]byte, n)
			read, _ := io.ReadFull(lf.r, buf)
			if read == 0 && n > 0 {
				out = append(out, nil)
				continue
			}
			out = append(out, string(buf[:read]))
			continue
		}
		format, _ := fa.(string)
		for len(format) > 0 && format[0] == '*' {
			format = format[1:]
		}
		v, err := readOne(lf, format)
		if err != nil {
			rt.Raisef(r, "%s", err.Error())
		}
		out = append(out, v)
	}
	return out, nil
}

func ioRead(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	full := append([]rt.Value{newFileUserdata(defaultInput)}, args...)
	return fileRead(r, full)
}

func fileClose(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	lf := asFile(r, "close", args, 0)
	if lf.w != nil {
		lf.w.Flush()
	}
	if lf.f != os.Stdout && lf.f != os.Stdin && lf.f != os.Stderr {
		lf.f.Close()
	}
	lf.closed = true
	return []rt.Value{true}, nil
}

func ioClose(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	if len(args) == 0 {
		return fileClose(r, []rt.Value{newFileUserdata(defaultOutput)})
	}
	return fileClose(r, args)
}

func fileFlush(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	lf := asFile(r, "flush", args, 0)
	if lf.w != nil {
		lf.w.Flush()
	}
	return []rt.Value{args[0]}, nil
}

func fileSeek(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	lf := asFile(r, "seek", args, 0)
	whence := optString(args, 1, "cur")
	offset := optInt(args, 2, 0)
	var wh int
	switch whence {
	case "set":
		wh = io.SeekStart
	case "end":
		wh = io.SeekEnd
	default:
		wh = io.SeekCurrent
	}
	pos, err := lf.f.Seek(offset, wh)
	if err != nil {
		return []rt.Value{nil, err.Error()}, nil
	}
	lf.r = bufio.NewReader(lf.f)
	return []rt.Value{pos}, nil
}

func fileLines(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	lf := asFile(r, "lines", args, 0)
	iter := rt.NewGoFunc("file-lines-iterator", func(r *rt.Runtime, _ []rt.Value) ([]rt.Value, error) {
		v, _ := readOne(lf, "l")
		return []rt.Value{v}, nil
	})
	return []rt.Value{iter}, nil
}

func ioOpen(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	name := checkString(r, "open", args, 0)
	mode := optString(args, 1, "r")

	var flag int
	switch mode {
	case "r", "rb":
		flag = os.O_RDONLY
	case "w", "wb":
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case "a", "ab":
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case "r+", "rb+":
		flag = os.O_RDWR
	case "w+", "wb+":
		flag = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	case "a+", "ab+":
		flag = os.O_RDWR | os.O_CREATE | os.O_APPEND
	default:
		flag = os.O_RDONLY
	}

	f, err := os.OpenFile(name, flag, 0644)
	if err != nil {
		return []rt.Value{nil, err.Error()}, nil
	}
	lf := &luaFile{f: f}
	if flag == os.O_RDONLY || flag&os.O_RDWR != 0 {
		lf.r = bufio.NewReader(f)
	}
	if flag != os.O_RDONLY {
		lf.w = bufio.NewWriter(f)
	}
	return []rt.Value{newFileUserdata(lf)}, nil
}

func ioLines(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	name := checkString(r, "lines", args, 0)
	f, err := os.Open(name)
	if err != nil {
		rt.Raisef(r, "%s", err.Error())
	}
	lf := &luaFile{f: f, r: bufio.NewReader(f)}
	iter := rt.NewGoFunc("io.lines-iterator", func(r *rt.Runtime, _ []rt.Value) ([]rt.Value, error) {
		v, _ := readOne(lf, "l")
		if v == nil {
			f.Close()
		}
		return []rt.Value{v}, nil
	})
	return []rt.Value{iter}, nil
}
