package main

// sampleText is shown when no file is given.
const sampleText = `Rapid serial visual presentation shows a text one word at a time in a fixed spot on the screen. Your eyes stay still while the words come to them, so no time is lost jumping from word to word or sliding back over a line you already read.

Each word is drawn with one letter highlighted. Keep your gaze on that letter and let the rest of the word fall into place around it. The highlighted letter always sits in the same column, which is what lets you read without moving your eyes.

Start slowly. Three hundred words per minute is close to a comfortable reading pace for most people. Press space to begin, wait for the countdown, and use plus and minus to change the speed while you read. Press e to paste your own text, or pass a file with --file when you start the program.`
