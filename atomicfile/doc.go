/*
Replacing a file's content in place is not crash-safe: a failure between
truncate and the last write leaves a partial file. The robust way is to
write a temporary file in the same directory, sync it and rename it over
the destination, cleaning up the temporary file on every failure path.

Package atomicfile implements that dance:

	func replaceFile(path string, data []byte) error {
		w, err := atomicfile.New(path)
		if err != nil {
			return err
		}
		// removes the temp file unless Close already renamed it
		defer w.Discard()

		if _, err := w.Write(data); err != nil {
			return err
		}
		return w.Close()
	}

or, for the common one-shot case, atomicfile.WriteFile(path, data).
*/
package atomicfile
