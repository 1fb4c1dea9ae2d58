// Command blockfsctl opens a blockfs image and drives it through an
// interactive shell or one-shot commands.
package main

func main() {
	execute()
}
