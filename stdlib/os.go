package stdlib

import (
	"os"
	"time"

	"git.lolli.tech/lollipopkit/lua54/rt"
)

func openOS(r *rt.Runtime) {
	t := newLibTable(r, "os")
	reg(t, "time", osTime)
	reg(t, "clock", osClock)
	reg(t, "date", osDate)
	reg(t, "difftime", osDifftime)
	reg(t, "getenv", osGetenv)
	reg(t, "exit", osExit)
	reg(t, "remove", osRemove)
	reg(t, "rename", osRename)
	reg(t, "tmpname", osTmpname)
}

var processStart = time.Now()

func osTime(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	if t, ok := arg(args, 0).(*rt.Table); ok {
		year := int(tableGetInt(t, "year", 1970))
		month := int(tableGetInt(t, "month", 1))
		day := int(tableGetInt(t, "day", 1))
		hour := int(tableGetInt(t, "hour", 12))
		min := int(tableGetInt(t, "min", 0))
		sec := int(tableGetInt(t, "sec", 0))
		tm := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.Local)
		return []rt.Value{tm.Unix()}, nil
	}
	return []rt.Value{time.Now().Unix()}, nil
}

func tableGetInt(t *rt.Table, key string, def int64) int64 {
	v := t.Get(key)
	n, ok := rt.ToInteger(v)
	if !ok {
		return def
	}
	return n
}

func osClock(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	return []rt.Value{time.Since(processStart).Seconds()}, nil
}

func osDifftime(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	t2 := checkNumber(r, "difftime", args, 0)
	t1 := checkNumber(r, "difftime", args, 1)
	return []rt.Value{t2 - t1}, nil
}

func osDate(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	format := optString(args, 0, "%c")
	var when time.Time
	if len(args) > 1 {
		sec := checkInt(r, "date", args, 1)
		when = time.Unix(sec, 0)
	} else {
		when = time.Now()
	}

	utc := false
	if len(format) > 0 && format[0] == '!' {
		utc = true
		format = format[1:]
	}
	if utc {
		when = when.UTC()
	} else {
		when = when.Local()
	}

	if format == "*t" || format == "!*t" {
		t := rt.NewTable()
		_ = t.Set("year", int64(when.Year()))
		_ = t.Set("month", int64(when.Month()))
		_ = t.Set("day", int64(when.Day()))
		_ = t.Set("hour", int64(when.Hour()))
		_ = t.Set("min", int64(when.Minute()))
		_ = t.Set("sec", int64(when.Second()))
		_ = t.Set("wday", int64(when.Weekday())+1)
		_ = t.Set("yday", int64(when.YearDay()))
		_ = t.Set("isdst", false)
		return []rt.Value{t}, nil
	}
	return []rt.Value{strftime(format, when)}, nil
}

// strftime implements the subset of C strftime directives Lua's os.date
// exposes, since Go's time package uses a reference-layout format
// instead of %-directives.
func strftime(format string, t time.Time) string {
	var b []byte
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 >= len(format) {
			b = append(b, format[i])
			continue
		}
		i++
		switch format[i] {
		case 'Y':
			b = append(b, t.Format("2006")...)
		case 'y':
			b = append(b, t.Format("06")...)
		case 'm':
			b = append(b, t.Format("01")...)
		case 'd':
			b = append(b, t.Format("02")...)
		case 'H':
			b = append(b, t.Format("15")...)
		case 'M':
			b = append(b, t.Format("04")...)
		case 'S':
			b = append(b, t.Format("05")...)
		case 'p':
			b = append(b, t.Format("PM")...)
		case 'A':
			b = append(b, t.Format("Monday")...)
		case 'a':
			b = append(b, t.Format("Mon")...)
		case 'B':
			b = append(b, t.Format("January")...)
		case 'b':
			b = append(b, t.Format("Jan")...)
		case 'c':
			b = append(b, t.Format("Mon Jan  2 15:04:05 2006")...)
		case 'x':
			b = append(b, t.Format("01/02/06")...)
		case 'X':
			b = append(b, t.Format("15:04:05")...)
		case '%':
			b = append(b, '%')
		default:
			b = append(b, '%', format[i])
		}
	}
	return string(b)
}

func osGetenv(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	name := checkString(r, "getenv", args, 0)
	v, ok := os.LookupEnv(name)
	if !ok {
		return []rt.Value{nil}, nil
	}
	return []rt.Value{v}, nil
}

func osExit(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	code := 0
	switch v := arg(args, 0).(type) {
	case int64:
		code = int(v)
	case bool:
		if !v {
			code = 1
		}
	}
	stdout.Flush()
	os.Exit(code)
	return nil, nil
}

func osRemove(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	name := checkString(r, "remove", args, 0)
	if err := os.Remove(name); err != nil {
		return []rt.Value{nil, err.Error()}, nil
	}
	return []rt.Value{true}, nil
}

func osRename(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	from := checkString(r, "rename", args, 0)
	to := checkString(r, "rename", args, 1)
	if err := os.Rename(from, to); err != nil {
		return []rt.Value{nil, err.Error()}, nil
	}
	return []rt.Value{true}, nil
}

func osTmpname(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	f, err := os.CreateTemp("", "lua54-*")
	if err != nil {
		rt.Raisef(r, "unable to generate a unique filename")
	}
	name := f.Name()
	f.Close()
	return []rt.Value{name}, nil
}
