package progress

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationRegex = regexp.MustCompile(`Duration: (\d+):(\d+):(\d+)\.(\d+)`)

// ParseFFmpeg reads the key=value stream of `ffmpeg -progress pipe:1` and
// moves task along. A "Duration:" banner line, if present, sets the total.
func ParseFFmpeg(r io.Reader, task *Task) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := scanner.Text()

		if m := durationRegex.FindStringSubmatch(line); m != nil {
			hours, _ := strconv.Atoi(m[1])
			minutes, _ := strconv.Atoi(m[2])
			seconds, _ := strconv.Atoi(m[3])
			hundredths, _ := strconv.Atoi(m[4])

			total := time.Duration(hours)*time.Hour +
				time.Duration(minutes)*time.Minute +
				time.Duration(seconds)*time.Second +
				time.Duration(hundredths)*10*time.Millisecond
			task.SetTotal(int64(total))
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		// out_time_ms is in microseconds too; ffmpeg kept the old name.
		case "out_time_us", "out_time_ms":
			us, err := strconv.ParseInt(value, 10, 64)
			if err == nil {
				task.SetCurrent(int64(time.Duration(us) * time.Microsecond))
			}
		case "speed":
			task.SetSpeed(parseSpeed(value))
		case "progress":
			if value == "end" {
				task.SetCurrent(task.Total())
			}
		}
	}

	return scanner.Err()
}

func parseSpeed(s string) float64 {
	s = strings.TrimSuffix(s, "x")
	speed, _ := strconv.ParseFloat(s, 64)
	return speed
}
