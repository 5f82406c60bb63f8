package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"bytecodec"
)

const usage = "Encode: bytecodec <lzw|packbits|deflate|zstd|brotli> <input> [level]\n" +
	"Decode: bytecodec -d <lzw|packbits|deflate|zstd|brotli> <input>\n"

func main() {
	args := os.Args[1:]
	decode := len(args) > 0 && args[0] == "-d"
	if decode {
		args = args[1:]
	}
	if len(args) < 2 || len(args) > 3 || (decode && len(args) != 2) {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	scheme, err := bytecodec.ParseScheme(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	inputPath := args[1]

	// If -d is given → decode, stripping the scheme extension
	if decode {
		outPath := strings.TrimSuffix(inputPath, scheme.Extension()) + ".out"
		dec, err := bytecodec.NewDecoder(scheme, bytecodec.Options{})
		if err != nil {
			fmt.Fprintln(os.Stderr, "decode error:", err)
			os.Exit(1)
		}
		if err := run(dec, inputPath, outPath); err != nil {
			fmt.Fprintln(os.Stderr, "decode error:", err)
			os.Exit(1)
		}
		fmt.Printf("Decoded %s (%s) → %s\n", inputPath, scheme, outPath)
		return
	}

	// Otherwise: encode with default or provided level
	var opts bytecodec.Options
	if len(args) == 3 {
		lvl, err := strconv.Atoi(args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, "level must be an integer")
			os.Exit(1)
		}
		opts.Level = lvl
	}

	outPath := inputPath + scheme.Extension()
	enc, err := bytecodec.NewEncoder(scheme, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "encode error:", err)
		os.Exit(1)
	}
	if err := run(enc, inputPath, outPath); err != nil {
		fmt.Fprintln(os.Stderr, "encode error:", err)
		os.Exit(1)
	}
	fmt.Printf("Encoded %s (%s, level=%d) → %s\n", inputPath, scheme, opts.Level, outPath)
}

// run streams inPath through c into outPath.
func run(c bytecodec.Codec, inPath, outPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	sink := func(p []byte) error {
		_, err := w.Write(p)
		return err
	}

	buf := make([]byte, 32*1024)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if err := c.Update(buf[:n], sink); err != nil {
				return err
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}
	if err := c.Finalize(sink); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return out.Close()
}
